package gridify

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Query is the filtering, ordering and paging request of a list endpoint.
// Its tags let it bind straight from URL query parameters.
type Query struct {
	Page      int    `json:"page" form:"page"`
	PageSize  int    `json:"pageSize" form:"pageSize"`
	SortBy    string `json:"sortBy,omitempty" form:"sortBy"`
	IsSortAsc bool   `json:"isSortAsc" form:"isSortAsc"`
	Filter    string `json:"filter,omitempty" form:"filter"`
}

// Paging is one page of data with the number of items before paging
type Paging[T any] struct {
	TotalItems int64 `json:"totalItems" yaml:"totalItems"`
	Data       []T   `json:"data" yaml:"data"`
}

// Predicate is a compiled filter over T. The zero value matches everything.
type Predicate[T any] struct {
	Expr Expr
}

// Match reports whether rec satisfies the filter
func (p Predicate[T]) Match(rec T) bool {
	return Evaluate(p.Expr, rec)
}

// Gridifier applies filter, ordering and paging requests to collections of T
// using one mapper and one configuration. It is safe for concurrent use once
// the mapper is set up.
type Gridifier[T any] struct {
	mapper *Mapper[T]
	cfg    Config
	cache  *SyntaxCache
}

// New creates a Gridifier. Parsed filters are cached.
func New[T any](mapper *Mapper[T], cfg Config) *Gridifier[T] {
	return &Gridifier[T]{mapper: mapper, cfg: cfg, cache: NewSyntaxCache(defaultCacheSize)}
}

// Mapper returns the mapper in use
func (g *Gridifier[T]) Mapper() *Mapper[T] {
	return g.mapper
}

// Config returns the configuration in use
func (g *Gridifier[T]) Config() Config {
	return g.cfg
}

// Predicate compiles filter. A blank filter yields the match-all predicate.
func (g *Gridifier[T]) Predicate(filter string) (Predicate[T], error) {
	if strings.TrimSpace(filter) == "" {
		return Predicate[T]{}, nil
	}
	expr, err := Compile(g.cache.Parse(filter, g.cfg), g.mapper, g.cfg)
	if err != nil {
		return Predicate[T]{}, err
	}
	return Predicate[T]{Expr: expr}, nil
}

// Sort resolves the sort field of q; nil when it is missing or unmapped
func (g *Gridifier[T]) Sort(q Query) *Sort {
	s := ResolveSort(q.SortBy, q.IsSortAsc, g.mapper)
	if s == nil && strings.TrimSpace(q.SortBy) != "" {
		g.cfg.logger().Debug("sort field is not mapped, ordering skipped", "field", q.SortBy)
	}
	return s
}

// Page returns the normalized skip/take window of q
func (g *Gridifier[T]) Page(q Query) Page {
	return NewPage(q.Page, q.PageSize, g.cfg)
}

// Validate checks that the filter of q compiles
func (g *Gridifier[T]) Validate(q Query) error {
	_, err := g.Predicate(q.Filter)
	return err
}

// ApplyFiltering returns the items matching filter
func (g *Gridifier[T]) ApplyFiltering(items []T, filter string) ([]T, error) {
	p, err := g.Predicate(filter)
	if err != nil {
		return nil, err
	}
	if p.Expr == nil {
		return items, nil
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if p.Match(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

// ApplyOrdering sorts items by the sort field of q
func (g *Gridifier[T]) ApplyOrdering(items []T, q Query) []T {
	s := g.Sort(q)
	if s == nil {
		return items
	}
	return SortSlice(items, s)
}

// ApplyPaging returns the page of items selected by q
func (g *Gridifier[T]) ApplyPaging(items []T, q Query) []T {
	return pageSlice(items, g.Page(q))
}

// ApplyFilteringAndOrdering filters then sorts items
func (g *Gridifier[T]) ApplyFilteringAndOrdering(items []T, q Query) ([]T, error) {
	out, err := g.ApplyFiltering(items, q.Filter)
	if err != nil {
		return nil, err
	}
	return g.ApplyOrdering(out, q), nil
}

// ApplyOrderingAndPaging sorts items then returns the requested page
func (g *Gridifier[T]) ApplyOrderingAndPaging(items []T, q Query) []T {
	return g.ApplyPaging(g.ApplyOrdering(items, q), q)
}

// ApplyEverything filters, sorts and pages items
func (g *Gridifier[T]) ApplyEverything(items []T, q Query) ([]T, error) {
	out, err := g.ApplyFilteringAndOrdering(items, q)
	if err != nil {
		return nil, err
	}
	return g.ApplyPaging(out, q), nil
}

// Gridify filters, sorts and pages items and reports the filtered count
func (g *Gridifier[T]) Gridify(items []T, q Query) (Paging[T], error) {
	out, err := g.ApplyFilteringAndOrdering(items, q)
	if err != nil {
		return Paging[T]{}, err
	}
	return Paging[T]{TotalItems: int64(len(out)), Data: g.ApplyPaging(out, q)}, nil
}

// Plan turns q into a backend plan
func (g *Gridifier[T]) Plan(q Query) (Plan, error) {
	p, err := g.Predicate(q.Filter)
	if err != nil {
		return Plan{}, err
	}
	page := g.Page(q)
	return Plan{Filter: p.Expr, Sort: g.Sort(q), Page: &page}, nil
}

// Find runs q against src
func (g *Gridifier[T]) Find(ctx context.Context, src Source[T], q Query) (Paging[T], error) {
	ctx, span := g.cfg.tracer().Start(ctx, "gridify.find", trace.WithAttributes(queryAttributes(q)...))
	defer span.End()

	if src == nil {
		recordError(span, errNilSource)
		return Paging[T]{}, errNilSource
	}
	plan, err := g.Plan(q)
	if err != nil {
		recordError(span, err)
		return Paging[T]{}, err
	}
	data, total, err := src.Find(ctx, plan)
	if err != nil {
		recordError(span, err)
		return Paging[T]{}, err
	}
	span.SetAttributes(
		attribute.Int64(AttrTotalItems, total),
		attribute.Int(AttrResultCount, len(data)),
	)
	return Paging[T]{TotalItems: total, Data: data}, nil
}
