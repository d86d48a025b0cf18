package gridify

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ElasticsearchQuery represents the structure of an Elasticsearch search body
type ElasticsearchQuery struct {
	Query map[string]interface{}   `json:"query"`
	Sort  []map[string]interface{} `json:"sort,omitempty"`
	From  int                      `json:"from,omitempty"`
	Size  int                      `json:"size,omitempty"`
}

// BuildElasticsearchQuery converts a plan into an Elasticsearch search body
func BuildElasticsearchQuery(plan Plan) ElasticsearchQuery {
	query := ElasticsearchQuery{Query: matchAll()}
	if plan.Filter != nil {
		query.Query = buildElasticsearchQueryFromExpr(plan.Filter)
	}

	if plan.Page != nil {
		p := *plan.Page
		p.validate()
		query.From = p.Skip
		query.Size = p.Take
	}

	if s := plan.Sort; s != nil {
		order := "asc"
		if s.Desc {
			order = "desc"
		}
		query.Sort = append(query.Sort, map[string]interface{}{
			s.Column: map[string]string{"order": order},
		})
	}
	return query
}

// GetElasticsearchQueryString returns the search body as indented JSON
func GetElasticsearchQueryString(plan Plan) (string, error) {
	jsonBytes, err := json.MarshalIndent(BuildElasticsearchQuery(plan), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal Elasticsearch query")
	}
	return string(jsonBytes), nil
}

func matchAll() map[string]interface{} {
	return map[string]interface{}{
		"match_all": map[string]interface{}{},
	}
}

// buildElasticsearchQueryFromExpr converts a single expression to Elasticsearch query
func buildElasticsearchQueryFromExpr(expr Expr) map[string]interface{} {
	switch x := expr.(type) {
	case CompareExpr:
		return elasticsearchCompare(x)
	case AndExpr:
		must := []map[string]interface{}{}
		for _, op := range x.Operands {
			if op != nil {
				must = append(must, buildElasticsearchQueryFromExpr(op))
			}
		}
		return map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		}
	case OrExpr:
		should := []map[string]interface{}{}
		for _, op := range x.Operands {
			if op != nil {
				should = append(should, buildElasticsearchQueryFromExpr(op))
			}
		}
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		}
	case FalseExpr:
		return mustNot(matchAll())
	default:
		return matchAll()
	}
}

func elasticsearchCompare(x CompareExpr) map[string]interface{} {
	value := sqlValue(x.Value)
	switch x.Op {
	case OperationEq:
		if value == nil {
			return mustNot(exists(x.Column))
		}
		return map[string]interface{}{
			"term": map[string]interface{}{x.Column: value},
		}
	case OperationNeq:
		if value == nil {
			return exists(x.Column)
		}
		return mustNot(map[string]interface{}{
			"term": map[string]interface{}{x.Column: value},
		})
	case OperationGt, OperationGte, OperationLt, OperationLte:
		bound := map[Operation]string{
			OperationGt: "gt", OperationGte: "gte", OperationLt: "lt", OperationLte: "lte",
		}[x.Op]
		return map[string]interface{}{
			"range": map[string]interface{}{
				x.Column: map[string]interface{}{bound: value},
			},
		}
	}

	text := escapeWildcard(toText(x.Value))
	var pattern string
	switch x.Op {
	case OperationStartsWith, OperationNotStartsWith:
		pattern = text + "*"
	case OperationEndsWith, OperationNotEndsWith:
		pattern = "*" + text
	default:
		pattern = "*" + text + "*"
	}
	wildcard := map[string]interface{}{
		"wildcard": map[string]interface{}{x.Column: pattern},
	}
	if x.Op.Negated() {
		return mustNot(wildcard)
	}
	return wildcard
}

func mustNot(q map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{"must_not": q},
	}
}

func exists(field string) map[string]interface{} {
	return map[string]interface{}{
		"exists": map[string]interface{}{"field": field},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
