package gridify

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// toGormClause converts a compiled filter into a gorm clause.Expression
func toGormClause(e Expr) clause.Expression {
	switch x := e.(type) {
	case CompareExpr:
		return gormCompare(x)
	case AndExpr:
		var parts []clause.Expression
		for _, op := range x.Operands {
			if c := toGormClause(op); c != nil {
				parts = append(parts, c)
			}
		}
		return clause.And(parts...)
	case OrExpr:
		var parts []clause.Expression
		for _, op := range x.Operands {
			if c := toGormClause(op); c != nil {
				parts = append(parts, c)
			}
		}
		return clause.Or(parts...)
	case FalseExpr:
		return clause.Expr{SQL: "1 = 0"}
	default:
		return nil
	}
}

func gormCompare(x CompareExpr) clause.Expression {
	col := x.Column
	value := sqlValue(x.Value)
	switch x.Op {
	case OperationEq:
		return clause.Eq{Column: col, Value: value}
	case OperationNeq:
		return clause.Neq{Column: col, Value: value}
	case OperationGt:
		return clause.Gt{Column: col, Value: value}
	case OperationGte:
		return clause.Gte{Column: col, Value: value}
	case OperationLt:
		return clause.Lt{Column: col, Value: value}
	case OperationLte:
		return clause.Lte{Column: col, Value: value}
	}

	sql := "? LIKE ? " + likeEscapeClause
	if x.Op.Negated() {
		sql = "? NOT LIKE ? " + likeEscapeClause
	}
	return clause.Expr{SQL: sql, Vars: []any{clause.Column{Name: col}, likePattern(x.Op, x.Value)}}
}

func gormOrder(s *Sort) clause.OrderBy {
	return clause.OrderBy{Columns: []clause.OrderByColumn{{
		Column: clause.Column{Name: s.Column, Table: clause.CurrentTable},
		Desc:   s.Desc,
	}}}
}

// ApplyGormFiltering adds the filter of plan to trx
func ApplyGormFiltering(trx *gorm.DB, plan Plan) *gorm.DB {
	if plan.Filter == nil {
		return trx
	}
	if c := toGormClause(plan.Filter); c != nil {
		trx = trx.Clauses(clause.Where{Exprs: []clause.Expression{c}})
	}
	return trx
}

// ApplyGormOrdering adds the sort of plan to trx
func ApplyGormOrdering(trx *gorm.DB, plan Plan) *gorm.DB {
	if plan.Sort == nil {
		return trx
	}
	return trx.Clauses(gormOrder(plan.Sort))
}

// ApplyGormPaging adds the limit/offset of plan to trx
func ApplyGormPaging(trx *gorm.DB, plan Plan) *gorm.DB {
	if plan.Page == nil {
		return trx
	}
	p := *plan.Page
	p.validate()
	return trx.Offset(p.Skip).Limit(p.Take)
}

// ApplyGorm applies filter, sort and paging of plan to trx
func ApplyGorm(trx *gorm.DB, plan Plan) *gorm.DB {
	trx = ApplyGormFiltering(trx, plan)
	trx = ApplyGormOrdering(trx, plan)
	return ApplyGormPaging(trx, plan)
}

// GormSQL renders the SELECT statement plan would run against table, with
// the arguments inlined. Nothing is executed.
func GormSQL(db *gorm.DB, table string, plan Plan) string {
	tx := db.Session(&gorm.Session{DryRun: true, NewDB: true, Logger: logger.Default.LogMode(logger.Silent)})
	tx = ApplyGorm(tx.Table(table), plan)
	var rows []map[string]any
	stmt := tx.Find(&rows).Statement
	return db.Dialector.Explain(stmt.SQL.String(), stmt.Vars...)
}

// GormSource runs plans through gorm. DB should be scoped to the model of T.
type GormSource[T any] struct {
	DB *gorm.DB
}

func (s GormSource[T]) Find(ctx context.Context, plan Plan) ([]T, int64, error) {
	base := ApplyGormFiltering(s.DB.WithContext(ctx).Model(new(T)), plan)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count records")
	}

	var out []T
	q := ApplyGormPaging(ApplyGormOrdering(base.Session(&gorm.Session{}), plan), plan)
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to query records")
	}
	return out, total, nil
}
