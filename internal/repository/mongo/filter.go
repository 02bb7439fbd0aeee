package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"exercises/internal/repository"
)

var keys = map[repository.Field]string{
	repository.FieldID:     "_id",
	repository.FieldName:   "name",
	repository.FieldReps:   "reps",
	repository.FieldWeight: "weight",
	repository.FieldUnit:   "unit",
	repository.FieldDate:   "date",
}

var operators = map[repository.Op]string{
	repository.OpEq:  "$eq",
	repository.OpNe:  "$ne",
	repository.OpGt:  "$gt",
	repository.OpGte: "$gte",
	repository.OpLt:  "$lt",
	repository.OpLte: "$lte",
	repository.OpIn:  "$in",
}

// matchNothing is a filter no document satisfies.
var matchNothing = bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{}}}}}

// buildFilter renders a normalized filter as a query document.
// id values are converted to ObjectIDs; values that are not valid hex
// ObjectIDs cannot match any document.
func buildFilter(f repository.Filter) bson.D {
	conds := make(bson.A, 0, len(f))
	for _, p := range f {
		cond, ok := buildPredicate(p)
		if !ok {
			return matchNothing
		}
		if cond != nil {
			conds = append(conds, cond)
		}
	}

	switch len(conds) {
	case 0:
		return bson.D{}
	case 1:
		return conds[0].(bson.D)
	default:
		return bson.D{{Key: "$and", Value: conds}}
	}
}

// buildPredicate returns ok=false when p can never match and a nil
// condition when p matches every document.
func buildPredicate(p repository.Predicate) (bson.D, bool) {
	key := keys[p.Field]
	op := operators[p.Op]

	if p.Op == repository.OpIn {
		vals := make(bson.A, 0, len(p.Values))
		for _, v := range p.Values {
			if p.Field == repository.FieldID {
				oid, err := primitive.ObjectIDFromHex(v.(string))
				if err != nil {
					continue
				}
				vals = append(vals, oid)
				continue
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			return nil, false
		}
		return bson.D{{Key: key, Value: bson.D{{Key: op, Value: vals}}}}, true
	}

	val := p.Value
	if p.Field == repository.FieldID {
		oid, err := primitive.ObjectIDFromHex(val.(string))
		if err != nil {
			if p.Op == repository.OpNe {
				return nil, true
			}
			return nil, false
		}
		val = oid
	}
	return bson.D{{Key: key, Value: bson.D{{Key: op, Value: val}}}}, true
}

// buildProjection returns nil when every field is selected.
func buildProjection(p repository.Projection) bson.D {
	if len(p) == 0 {
		return nil
	}
	fields := p.Fields()
	if len(fields) == 0 {
		return bson.D{{Key: "_id", Value: 1}}
	}
	proj := make(bson.D, 0, len(fields))
	for _, f := range fields {
		proj = append(proj, bson.E{Key: keys[f], Value: 1})
	}
	return proj
}
