package gridify

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElasticsearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    Query
		expected string
	}{
		{
			name:  "No filter",
			query: Query{},
			expected: `{
				"query": {"match_all": {}},
				"size": 10
			}`,
		},
		{
			name:  "Or of term and range",
			query: Query{Filter: "name==John|age<<18"},
			expected: `{
				"query": {"bool": {
					"should": [
						{"term": {"name": "John"}},
						{"range": {"age": {"lt": 18}}}
					],
					"minimum_should_match": 1
				}},
				"size": 10
			}`,
		},
		{
			name:  "And with negations",
			query: Query{Filter: "name!=John,name!^B"},
			expected: `{
				"query": {"bool": {
					"must": [
						{"bool": {"must_not": {"term": {"name": "John"}}}},
						{"bool": {"must_not": {"wildcard": {"name": "B*"}}}}
					]
				}},
				"size": 10
			}`,
		},
		{
			name:  "Wildcards are escaped",
			query: Query{Filter: "name=*a*b"},
			expected: `{
				"query": {"wildcard": {"name": "*a\\*b*"}},
				"size": 10
			}`,
		},
		{
			name:  "Conversion failure",
			query: Query{Filter: "age>=abc"},
			expected: `{
				"query": {"bool": {"must_not": {"match_all": {}}}},
				"size": 10
			}`,
		},
		{
			name:  "Sort and paging",
			query: Query{Filter: "score>>7", SortBy: "score", IsSortAsc: true, Page: 3, PageSize: 5},
			expected: `{
				"query": {"range": {"score": {"gt": 7}}},
				"sort": [{"score": {"order": "asc"}}],
				"from": 10,
				"size": 5
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := GetElasticsearchQueryString(mustPlan(t, tt.query))
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, body)
		})
	}
}

func TestElasticsearchNullComparisons(t *testing.T) {
	q := BuildElasticsearchQuery(Plan{Filter: CompareExpr{Column: "age", Op: OperationEq}})
	assert.Equal(t, mustNot(exists("age")), q.Query)

	q = BuildElasticsearchQuery(Plan{Filter: CompareExpr{Column: "age", Op: OperationNeq}})
	assert.Equal(t, exists("age"), q.Query)
}

func TestElasticsearchQueryStringError(t *testing.T) {
	_, err := GetElasticsearchQueryString(Plan{Filter: CompareExpr{Column: "age", Op: OperationEq, Value: make(chan int)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal Elasticsearch query")

	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, errors.Cause(err), &unsupported)
}
