package gridify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPlan(t *testing.T, q Query) Plan {
	t.Helper()
	plan, err := newTestGridifier().Plan(q)
	require.NoError(t, err)
	return plan
}

func TestBuildRawSelect(t *testing.T) {
	plan := mustPlan(t, Query{Filter: "name==John,age>>30", SortBy: "age", Page: 2, PageSize: 5})

	query, args := BuildRawSelect("people", plan)
	assert.Equal(t, "SELECT * FROM `people` WHERE (`name` = ? AND `age` > ?) ORDER BY `age` DESC LIMIT 5 OFFSET 5", query)
	assert.Equal(t, []any{"John", 30}, args)

	assert.Equal(t,
		"SELECT * FROM `people` WHERE (`name` = 'John' AND `age` > 30) ORDER BY `age` DESC LIMIT 5 OFFSET 5",
		RawSQL("people", plan))

	query, args = BuildRawCount("people", plan)
	assert.Equal(t, "SELECT COUNT(*) FROM `people` WHERE (`name` = ? AND `age` > ?)", query)
	assert.Len(t, args, 2)
}

func TestBuildRawWhere(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		where  string
		args   []any
	}{
		{
			name:   "Text operations",
			filter: "name^Jo|name!$a",
			where:  "(`name` LIKE ? ESCAPE '\\' OR `name` NOT LIKE ? ESCAPE '\\')",
			args:   []any{"Jo%", "%a"},
		},
		{
			name:   "Contains",
			filter: "name=*ess",
			where:  "`name` LIKE ? ESCAPE '\\'",
			args:   []any{"%ess%"},
		},
		{
			name:   "Wildcards in the value are literal",
			filter: "name=*50%_",
			where:  "`name` LIKE ? ESCAPE '\\'",
			args:   []any{`%50\%\_%`},
		},
		{
			name:   "Backslash in the value",
			filter: `name^a\\b`,
			where:  "`name` LIKE ? ESCAPE '\\'",
			args:   []any{`a\\b%`},
		},
		{
			name:   "Conversion failure",
			filter: "age>>abc",
			where:  "1 = 0",
		},
		{
			name:   "Uuid binds as text",
			filter: "myGuid==e2cec5dd-208d-4bb5-a852-50008f8ba366",
			where:  "`my_guid` = ?",
			args:   []any{"e2cec5dd-208d-4bb5-a852-50008f8ba366"},
		},
		{
			name:   "Decimal binds as text",
			filter: "balance<=12.5",
			where:  "`balance` <= ?",
			args:   []any{"12.5"},
		},
		{
			name:   "Nested column",
			filter: "address.city!=NY",
			where:  "`address_city` != ?",
			args:   []any{"NY"},
		},
		{
			name:   "Unmapped side",
			filter: "unknown==1,id>=2",
			where:  "(1 = 0 AND `id` >= ?)",
			args:   []any{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := mustPlan(t, Query{Filter: tt.filter})
			where, args := BuildRawWhere(plan.Filter)
			assert.Equal(t, tt.where, where)
			if tt.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestBuildRawWhereNull(t *testing.T) {
	e := OrExpr{Operands: []Expr{
		CompareExpr{Column: "age", Op: OperationEq},
		CompareExpr{Column: "name", Op: OperationNeq},
	}}
	where, args := BuildRawWhere(e)
	assert.Equal(t, "(`age` IS NULL OR `name` IS NOT NULL)", where)
	assert.Empty(t, args)

	where, _ = BuildRawWhere(nil)
	assert.Empty(t, where)
}

func TestBuildRawSelectColumns(t *testing.T) {
	query, args := BuildRawSelect("people", Plan{}, "id", "name")
	assert.Equal(t, "SELECT `id`, `name` FROM `people`", query)
	assert.Empty(t, args)

	query, _ = BuildRawSelect("people", Plan{Page: &Page{Skip: 20}})
	assert.Equal(t, "SELECT * FROM `people` OFFSET 20", query)
}

func TestExpandPlaceholders(t *testing.T) {
	assert.Equal(t, "a = '?' AND b = 1", expandPlaceholders("a = '?' AND b = ?", []any{1}))
	assert.Equal(t, "name = 'O''Brien'", expandPlaceholders("name = ?", []any{"O'Brien"}))
	assert.Equal(t, "a IS NULL AND b = TRUE", expandPlaceholders("a IS ? AND b = ?", []any{nil, true}))
	assert.Equal(t, "x = ?", expandPlaceholders("x = ?", nil))
}
