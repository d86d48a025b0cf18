package gridify

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type compiler[T any] struct {
	mapper *Mapper[T]
	cfg    Config
}

// Compile binds a syntax tree to mapper and returns the resulting filter. A
// nil Expr with a nil error means the filter does not restrict anything.
//
// A tree with diagnostics is rejected with the last diagnostic as message.
func Compile[T any](tree *SyntaxTree, mapper *Mapper[T], cfg Config) (Expr, error) {
	if mapper == nil {
		return nil, errNilMapper
	}
	if tree == nil {
		return nil, newFilterError("invalid expression: empty")
	}
	if tree.HasErrors() {
		return nil, &FilterError{Message: tree.Diagnostics[len(tree.Diagnostics)-1]}
	}
	c := &compiler[T]{mapper: mapper, cfg: cfg}
	return c.compile(tree.Root)
}

func (c *compiler[T]) compile(n Node) (Expr, error) {
	switch x := n.(type) {
	case *ParenExpr:
		return c.compile(x.Inner)
	case *BinaryExpr:
		if x.IsComparison() {
			return c.comparison(x)
		}
		if x.Operator.Kind.IsLogical() {
			return c.combine(x)
		}
		return nil, newFilterError("invalid expression %s", x)
	case nil:
		return nil, newFilterError("invalid expression: empty")
	default:
		return nil, newFilterError("invalid expression %s", n)
	}
}

// combine joins two sides with And/Or. An unmapped side counts as a branch
// that matches nothing; when both sides are unmapped the whole node is.
func (c *compiler[T]) combine(x *BinaryExpr) (Expr, error) {
	left, err := c.compile(x.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compile(x.Right)
	if err != nil {
		return nil, err
	}
	if left == nil && right == nil {
		return nil, nil
	}
	if left == nil {
		left = FalseExpr{}
	}
	if right == nil {
		right = FalseExpr{}
	}
	if x.Operator.Kind == And {
		return AndExpr{Operands: []Expr{left, right}}, nil
	}
	return OrExpr{Operands: []Expr{left, right}}, nil
}

func (c *compiler[T]) comparison(x *BinaryExpr) (e Expr, err error) {
	field := strings.TrimSpace(x.Left.(*FieldExpr).Field.Text)
	raw := x.Right.(*ValueExpr).Value.Text
	log := c.cfg.logger().With("field", field, "value", raw)

	defer func() {
		if r := recover(); r != nil {
			log.Debug("comparison dropped", "panic", fmt.Sprint(r))
			e, err = nil, nil
		}
	}()

	mp, ok := c.mapper.GetMap(field)
	if !ok {
		if !c.cfg.IgnoreNotMappedFields {
			return nil, &MapperError{Field: field}
		}
		log.Debug("field is not mapped")
		return nil, nil
	}

	op, ok := operations[x.Operator.Kind]
	if !ok {
		return nil, newFilterError("invalid operator '%s'", x.Operator.Kind)
	}

	var value any
	switch {
	case mp.Convertor != nil:
		value = mp.Convertor(raw)
	case op.IsText():
		value = raw
	default:
		converted, convErr := convertValue(raw, mp.Type)
		switch {
		case convErr == nil:
			value = converted
		case isUUIDType(mp.Type):
			// a random id never equals a stored one
			value = uuid.New()
		default:
			log.Debug("literal does not convert to field type", "type", mp.Type, "error", convErr)
			return FalseExpr{}, nil
		}
	}

	return CompareExpr{
		Field:    mp.From,
		Column:   mp.Column,
		Document: mp.Document,
		Op:       op,
		Value:    value,
		Type:     mp.Type,
		get:      func(rec any) any { return mp.get(rec.(T)) },
	}, nil
}
