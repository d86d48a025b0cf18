package gridify

import (
	"context"
)

// Source executes a plan against a backend and returns the page of records
// together with the number of records matching before paging.
type Source[T any] interface {
	Find(ctx context.Context, plan Plan) ([]T, int64, error)
}

// SliceSource runs plans against an in-memory slice
type SliceSource[T any] struct {
	Items []T
}

func (s SliceSource[T]) Find(ctx context.Context, plan Plan) ([]T, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	matched := make([]T, 0, len(s.Items))
	for _, it := range s.Items {
		if Evaluate(plan.Filter, it) {
			matched = append(matched, it)
		}
	}
	total := int64(len(matched))
	if plan.Sort != nil {
		matched = SortSlice(matched, plan.Sort)
	}
	if plan.Page != nil {
		matched = pageSlice(matched, *plan.Page)
	}
	return matched, total, nil
}
