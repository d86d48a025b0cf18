package gridify

import (
	"fmt"
	"reflect"
	"strings"
)

type Operation string

const (
	OperationEq            Operation = "="
	OperationNeq           Operation = "!="
	OperationGt            Operation = ">"
	OperationGte           Operation = ">="
	OperationLt            Operation = "<"
	OperationLte           Operation = "<="
	OperationContains      Operation = "contains"
	OperationNotContains   Operation = "notContains"
	OperationStartsWith    Operation = "startsWith"
	OperationNotStartsWith Operation = "notStartsWith"
	OperationEndsWith      Operation = "endsWith"
	OperationNotEndsWith   Operation = "notEndsWith"
)

var operations = map[TokenKind]Operation{
	Equal:          OperationEq,
	NotEqual:       OperationNeq,
	GreaterThan:    OperationGt,
	LessThan:       OperationLt,
	GreaterOrEqual: OperationGte,
	LessOrEqual:    OperationLte,
	Like:           OperationContains,
	NotLike:        OperationNotContains,
	StartsWith:     OperationStartsWith,
	NotStartsWith:  OperationNotStartsWith,
	EndsWith:       OperationEndsWith,
	NotEndsWith:    OperationNotEndsWith,
}

// IsText reports whether the operation is a substring test
func (o Operation) IsText() bool {
	switch o {
	case OperationContains, OperationNotContains, OperationStartsWith,
		OperationNotStartsWith, OperationEndsWith, OperationNotEndsWith:
		return true
	}
	return false
}

// Negated reports whether the operation is the negation of another one
func (o Operation) Negated() bool {
	return o == OperationNeq || o == OperationNotContains || o == OperationNotStartsWith || o == OperationNotEndsWith
}

// Expr is a compiled filter. Backends translate it; Evaluate runs it in
// memory.
type Expr interface {
	isExpr()
}

// CompareExpr tests one mapped field against a typed value
type CompareExpr struct {
	Field    string
	Column   string
	Document string
	Op       Operation
	Value    any
	Type     reflect.Type

	get func(rec any) any
}

func (CompareExpr) isExpr() {}

func (e CompareExpr) String() string {
	return fmt.Sprintf("%s %s %v", e.Field, e.Op, e.Value)
}

// AndExpr matches when every operand matches
type AndExpr struct {
	Operands []Expr
}

func (AndExpr) isExpr() {}

// OrExpr matches when any operand matches
type OrExpr struct {
	Operands []Expr
}

func (OrExpr) isExpr() {}

// FalseExpr matches nothing. Literals that cannot be converted to the field
// type compile to it.
type FalseExpr struct{}

func (FalseExpr) isExpr() {}

// Sort orders by one mapped field
type Sort struct {
	Field    string
	Column   string
	Document string
	Desc     bool

	get func(rec any) any
}

// Page is a skip/take window
type Page struct {
	Skip int
	Take int
}

// Plan is everything a backend needs to run a query. A nil Filter or Sort
// means no filtering or ordering.
type Plan struct {
	Filter Expr
	Sort   *Sort
	Page   *Page
}

// Evaluate runs e against rec. A nil expression matches everything.
func Evaluate(e Expr, rec any) bool {
	switch x := e.(type) {
	case nil:
		return true
	case CompareExpr:
		if x.get == nil {
			return false
		}
		return compareField(x.get(rec), x.Op, x.Value)
	case AndExpr:
		for _, op := range x.Operands {
			if !Evaluate(op, rec) {
				return false
			}
		}
		return true
	case OrExpr:
		for _, op := range x.Operands {
			if Evaluate(op, rec) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func compareField(actual any, op Operation, expected any) bool {
	actual = indirect(actual)
	expected = indirect(expected)

	if op.IsText() {
		if actual == nil {
			return op.Negated()
		}
		s, v := toText(actual), toText(expected)
		var ok bool
		switch op {
		case OperationContains, OperationNotContains:
			ok = strings.Contains(s, v)
		case OperationStartsWith, OperationNotStartsWith:
			ok = strings.HasPrefix(s, v)
		default:
			ok = strings.HasSuffix(s, v)
		}
		return ok != op.Negated()
	}

	if actual == nil || expected == nil {
		switch op {
		case OperationEq:
			return actual == nil && expected == nil
		case OperationNeq:
			return actual != nil || expected != nil
		}
		return false
	}

	c, ok := compareValues(actual, expected)
	if !ok {
		if op == OperationEq || op == OperationNeq {
			eq := reflect.DeepEqual(actual, expected)
			return eq == (op == OperationEq)
		}
		return false
	}
	switch op {
	case OperationEq:
		return c == 0
	case OperationNeq:
		return c != 0
	case OperationGt:
		return c > 0
	case OperationGte:
		return c >= 0
	case OperationLt:
		return c < 0
	case OperationLte:
		return c <= 0
	}
	return false
}

// indirect dereferences pointers; a nil pointer becomes a nil interface
func indirect(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(v)
}
