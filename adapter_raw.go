package gridify

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// BuildRawWhere builds a SQL WHERE clause (without the leading WHERE keyword)
// and its args. A nil filter yields an empty clause.
func BuildRawWhere(e Expr) (string, []any) {
	if e == nil {
		return "", nil
	}
	return exprToSQL(e)
}

// BuildRawSelect builds a full SELECT query for the given table and columns.
// Identifiers are quoted with backticks to be broadly compatible with MySQL-like dialects.
// Placeholders use the '?' style.
func BuildRawSelect(table string, plan Plan, columns ...string) (string, []any) {
	cols := "*"
	if len(columns) > 0 {
		quoted := make([]string, 0, len(columns))
		for _, c := range columns {
			quoted = append(quoted, quoteIdent(c))
		}
		cols = strings.Join(quoted, ", ")
	}

	where, args := BuildRawWhere(plan.Filter)
	query := fmt.Sprintf("SELECT %s FROM %s", cols, quoteIdent(table))
	if where != "" {
		query += " WHERE " + where
	}
	if orderBy := buildOrderBy(plan.Sort); orderBy != "" {
		query += " " + orderBy
	}
	if limitOffset := buildLimitOffset(plan.Page); limitOffset != "" {
		query += " " + limitOffset
	}
	return query, args
}

// BuildRawCount builds the COUNT query matching the filter of plan
func BuildRawCount(table string, plan Plan) (string, []any) {
	where, args := BuildRawWhere(plan.Filter)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
	if where != "" {
		query += " WHERE " + where
	}
	return query, args
}

// RawSQL renders the SELECT of plan with its arguments inlined, for logging
// and debugging.
func RawSQL(table string, plan Plan, columns ...string) string {
	query, args := BuildRawSelect(table, plan, columns...)
	return expandPlaceholders(query, args)
}

// -- internals --

func exprToSQL(e Expr) (string, []any) {
	switch x := e.(type) {
	case CompareExpr:
		return compareToSQL(x)
	case AndExpr:
		return joinGroup("AND", x.Operands)
	case OrExpr:
		return joinGroup("OR", x.Operands)
	case FalseExpr:
		return "1 = 0", nil
	default:
		return "", nil
	}
}

func compareToSQL(x CompareExpr) (string, []any) {
	col := quoteIdent(x.Column)
	value := sqlValue(x.Value)
	if value == nil {
		switch x.Op {
		case OperationEq:
			return fmt.Sprintf("%s IS NULL", col), nil
		case OperationNeq:
			return fmt.Sprintf("%s IS NOT NULL", col), nil
		}
	}
	switch x.Op {
	case OperationEq:
		return fmt.Sprintf("%s = ?", col), []any{value}
	case OperationNeq:
		return fmt.Sprintf("%s != ?", col), []any{value}
	case OperationGt:
		return fmt.Sprintf("%s > ?", col), []any{value}
	case OperationGte:
		return fmt.Sprintf("%s >= ?", col), []any{value}
	case OperationLt:
		return fmt.Sprintf("%s < ?", col), []any{value}
	case OperationLte:
		return fmt.Sprintf("%s <= ?", col), []any{value}
	}
	pattern := likePattern(x.Op, x.Value)
	if x.Op.Negated() {
		return fmt.Sprintf("%s NOT LIKE ? %s", col, likeEscapeClause), []any{pattern}
	}
	return fmt.Sprintf("%s LIKE ? %s", col, likeEscapeClause), []any{pattern}
}

func joinGroup(op string, operands []Expr) (string, []any) {
	parts := make([]string, 0, len(operands))
	args := make([]any, 0)
	for _, e := range operands {
		if e == nil {
			continue
		}
		p, a := exprToSQL(e)
		if p != "" {
			parts = append(parts, p)
			args = append(args, a...)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	if len(parts) == 1 {
		return parts[0], args
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", args
}

func buildOrderBy(s *Sort) string {
	if s == nil {
		return ""
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", quoteIdent(s.Column), dir)
}

func buildLimitOffset(page *Page) string {
	if page == nil {
		return ""
	}
	p := *page
	p.validate()
	// Embed numbers directly for broad driver compatibility
	if p.Take <= 0 && p.Skip <= 0 {
		return ""
	}
	if p.Take > 0 && p.Skip > 0 {
		return fmt.Sprintf("LIMIT %d OFFSET %d", p.Take, p.Skip)
	}
	if p.Take > 0 {
		return fmt.Sprintf("LIMIT %d", p.Take)
	}
	return fmt.Sprintf("OFFSET %d", p.Skip)
}

func quoteIdent(ident string) string {
	// basic quoting; assumes ident does not contain backticks
	return "`" + ident + "`"
}

// sqlValue unwraps driver.Valuer values such as uuid.UUID and
// decimal.Decimal so they bind and print as their database form.
func sqlValue(v any) any {
	if valuer, ok := v.(driver.Valuer); ok {
		if dv, err := valuer.Value(); err == nil {
			return dv
		}
	}
	return v
}

const likeEscapeClause = "ESCAPE '\\'"

var likeEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"%", "\\%",
	"_", "\\_",
)

// likePattern wraps the text of v with % wildcards for the substring
// operations. Wildcards in the text itself are escaped with a backslash.
func likePattern(op Operation, v any) string {
	text := likeEscaper.Replace(toText(v))
	switch op {
	case OperationStartsWith, OperationNotStartsWith:
		return text + "%"
	case OperationEndsWith, OperationNotEndsWith:
		return "%" + text
	default:
		return "%" + text + "%"
	}
}

// expandPlaceholders replaces '?' with SQL literals derived from args in order.
// This is intended for debugging/logging, similar to GORM's DryRun Explain.
func expandPlaceholders(sql string, args []any) string {
	if len(args) == 0 {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql) + len(args)*4)

	idx := 0
	inSingle := false
	inDouble := false
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if ch == '\'' && !inDouble {
			inSingle = !inSingle
			b.WriteByte(ch)
			continue
		}
		if ch == '"' && !inSingle {
			inDouble = !inDouble
			b.WriteByte(ch)
			continue
		}
		if ch == '?' && !inSingle && !inDouble && idx < len(args) {
			b.WriteString(toSQLLiteral(args[idx]))
			idx++
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func toSQLLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%v", x)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%v", x)
	case float32, float64:
		return fmt.Sprintf("%v", x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return fmt.Sprintf("'%s'", escapeSQLString(x))
	default:
		return fmt.Sprintf("'%s'", escapeSQLString(fmt.Sprintf("%v", x)))
	}
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
