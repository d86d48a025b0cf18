package gridify

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the instrumentation name used for spans
const TracerName = "github.com/bi0dread/gridify"

const (
	AttrQueryFilter   = "gridify.query.filter"
	AttrQuerySortBy   = "gridify.query.sort_by"
	AttrQuerySortAsc  = "gridify.query.sort_asc"
	AttrQueryPage     = "gridify.query.page"
	AttrQueryPageSize = "gridify.query.page_size"
	AttrTotalItems    = "gridify.result.total_items"
	AttrResultCount   = "gridify.result.count"
)

func (c Config) tracer() trace.Tracer {
	tp := c.TracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return tp.Tracer(TracerName)
}

func queryAttributes(q Query) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrQueryPage, q.Page),
		attribute.Int(AttrQueryPageSize, q.PageSize),
	}
	if q.Filter != "" {
		attrs = append(attrs, attribute.String(AttrQueryFilter, q.Filter))
	}
	if q.SortBy != "" {
		attrs = append(attrs,
			attribute.String(AttrQuerySortBy, q.SortBy),
			attribute.Bool(AttrQuerySortAsc, q.IsSortAsc))
	}
	return attrs
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
