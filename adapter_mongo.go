package gridify

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BuildMongoFilter converts a compiled filter into a MongoDB filter document.
// A nil filter yields an empty document, which matches everything.
func BuildMongoFilter(e Expr) bson.M {
	if e == nil {
		return bson.M{}
	}
	return mongoExpr(e)
}

// BuildMongoFindOptions produces FindOptions including sort, limit/skip
func BuildMongoFindOptions(plan Plan) *options.FindOptions {
	opts := options.Find()
	if plan.Page != nil {
		p := *plan.Page
		p.validate()
		if p.Take > 0 {
			opts.SetLimit(int64(p.Take))
		}
		if p.Skip > 0 {
			opts.SetSkip(int64(p.Skip))
		}
	}
	if plan.Sort != nil {
		order := 1
		if plan.Sort.Desc {
			order = -1
		}
		opts.SetSort(bson.D{{Key: documentKey(plan.Sort.Document, plan.Sort.Column), Value: order}})
	}
	return opts
}

// Translate Expr to MongoDB filter fragment
func mongoExpr(e Expr) bson.M {
	switch x := e.(type) {
	case CompareExpr:
		return mongoCompare(x)
	case AndExpr:
		var parts []bson.M
		for _, op := range x.Operands {
			if m := mongoExpr(op); len(m) > 0 {
				parts = append(parts, m)
			}
		}
		return bson.M{"$and": parts}
	case OrExpr:
		var parts []bson.M
		for _, op := range x.Operands {
			if m := mongoExpr(op); len(m) > 0 {
				parts = append(parts, m)
			}
		}
		return bson.M{"$or": parts}
	case FalseExpr:
		// every document has an _id
		return bson.M{"_id": bson.M{"$exists": false}}
	default:
		return bson.M{}
	}
}

func documentKey(document, column string) string {
	if document != "" {
		return document
	}
	return column
}

func mongoCompare(x CompareExpr) bson.M {
	key := documentKey(x.Document, x.Column)
	value := mongoValue(x.Value)
	switch x.Op {
	case OperationEq:
		return bson.M{key: value}
	case OperationNeq:
		return bson.M{key: bson.M{"$ne": value}}
	case OperationGt:
		return bson.M{key: bson.M{"$gt": value}}
	case OperationGte:
		return bson.M{key: bson.M{"$gte": value}}
	case OperationLt:
		return bson.M{key: bson.M{"$lt": value}}
	case OperationLte:
		return bson.M{key: bson.M{"$lte": value}}
	}

	pattern := regexp.QuoteMeta(toText(x.Value))
	switch x.Op {
	case OperationStartsWith, OperationNotStartsWith:
		pattern = "^" + pattern
	case OperationEndsWith, OperationNotEndsWith:
		pattern = pattern + "$"
	}
	if x.Op.Negated() {
		return bson.M{key: bson.M{"$not": primitive.Regex{Pattern: pattern}}}
	}
	return bson.M{key: bson.M{"$regex": pattern}}
}

// mongoValue maps values the driver has no codec for onto BSON friendly ones
func mongoValue(v any) any {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String()
	case decimal.Decimal:
		if d, err := primitive.ParseDecimal128(x.String()); err == nil {
			return d
		}
		return x.String()
	}
	return v
}

// MongoSource runs plans against a collection
type MongoSource[T any] struct {
	Collection *mongo.Collection
}

func (s MongoSource[T]) Find(ctx context.Context, plan Plan) ([]T, int64, error) {
	filter := BuildMongoFilter(plan.Filter)
	total, err := s.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to count documents")
	}
	cur, err := s.Collection.Find(ctx, filter, BuildMongoFindOptions(plan))
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query documents")
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, errors.Wrap(err, "failed to decode documents")
	}
	return out, total, nil
}
