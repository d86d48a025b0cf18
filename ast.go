package gridify

import (
	"fmt"
	"strings"
)

// Node is an element of a parsed filter
type Node interface {
	node()
	String() string
}

// FieldExpr is a reference to a mapped field
type FieldExpr struct {
	Field Token
}

func (e *FieldExpr) node() {}

func (e *FieldExpr) String() string { return strings.TrimSpace(e.Field.Text) }

// ValueExpr is the raw literal on the right of a comparison
type ValueExpr struct {
	Value Token
}

func (e *ValueExpr) node() {}

func (e *ValueExpr) String() string { return e.Value.Text }

// BinaryExpr is either a comparison (field OP value) or a combination of two
// expressions with And/Or. The operator kind tells which.
type BinaryExpr struct {
	Left     Node
	Operator Token
	Right    Node
}

func (e *BinaryExpr) node() {}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Operator.Kind, e.Right)
}

// IsComparison reports whether the expression is a leaf comparison
func (e *BinaryExpr) IsComparison() bool {
	_, field := e.Left.(*FieldExpr)
	_, value := e.Right.(*ValueExpr)
	return field && value
}

// ParenExpr is a parenthesized group
type ParenExpr struct {
	Open  Token
	Inner Node
	Close Token
}

func (e *ParenExpr) node() {}

func (e *ParenExpr) String() string {
	return fmt.Sprintf("[%s]", e.Inner)
}

// SyntaxTree is the result of parsing a filter. A tree with diagnostics must
// not be compiled.
type SyntaxTree struct {
	Root        Node
	End         Token
	Diagnostics []string
}

// HasErrors reports whether parsing recorded any diagnostic
func (t *SyntaxTree) HasErrors() bool {
	return len(t.Diagnostics) > 0
}
