package gridify

import (
	"sort"
	"strings"
)

// ResolveSort looks sortBy up in mapper. It returns nil when sortBy is blank
// or not mapped; ordering is then skipped.
func ResolveSort[T any](sortBy string, ascending bool, mapper *Mapper[T]) *Sort {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" || mapper == nil {
		return nil
	}
	mp, ok := mapper.GetMap(sortBy)
	if !ok {
		return nil
	}
	return &Sort{
		Field:    mp.From,
		Column:   mp.Column,
		Document: mp.Document,
		Desc:     !ascending,
		get:      func(rec any) any { return mp.get(rec.(T)) },
	}
}

// SortSlice returns a sorted copy of items. Nil values sort first in
// ascending order. The sort is stable.
func SortSlice[T any](items []T, s *Sort) []T {
	out := append([]T(nil), items...)
	if s == nil || s.get == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := orderValues(s.get(out[i]), s.get(out[j]))
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func orderValues(a, b any) int {
	a, b = indirect(a), indirect(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	c, ok := compareValues(a, b)
	if !ok {
		return strings.Compare(toText(a), toText(b))
	}
	return c
}
