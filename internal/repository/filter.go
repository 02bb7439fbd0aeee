package repository

import (
	"encoding/json"
	"fmt"
	"math"
)

// Op is the comparison applied by a Predicate.
type Op string

const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// Predicate matches a single field. Value is used by every op except OpIn,
// which matches when the field equals any of Values.
type Predicate struct {
	Field  Field `json:"field"`
	Op     Op    `json:"op"`
	Value  any   `json:"value,omitempty"`
	Values []any `json:"values,omitempty"`
}

// Filter is a conjunction of predicates.
type Filter []Predicate

// Eq matches records whose field equals v.
func Eq(f Field, v any) Predicate { return Predicate{Field: f, Op: OpEq, Value: v} }

// Ne matches records whose field differs from v.
func Ne(f Field, v any) Predicate { return Predicate{Field: f, Op: OpNe, Value: v} }

// Gt matches records whose field is greater than v.
func Gt(f Field, v any) Predicate { return Predicate{Field: f, Op: OpGt, Value: v} }

// Gte matches records whose field is greater than or equal to v.
func Gte(f Field, v any) Predicate { return Predicate{Field: f, Op: OpGte, Value: v} }

// Lt matches records whose field is less than v.
func Lt(f Field, v any) Predicate { return Predicate{Field: f, Op: OpLt, Value: v} }

// Lte matches records whose field is less than or equal to v.
func Lte(f Field, v any) Predicate { return Predicate{Field: f, Op: OpLte, Value: v} }

// In matches records whose field equals any of vs.
func In(f Field, vs ...any) Predicate {
	return Predicate{Field: f, Op: OpIn, Values: vs}
}

func (op Op) valid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn:
		return true
	}
	return false
}

func (op Op) ordered() bool {
	switch op {
	case OpGt, OpGte, OpLt, OpLte:
		return true
	}
	return false
}

// Normalize validates every predicate and returns a copy whose values are
// string (text fields), int64 (reps) or float64 (weight).
// All problems are reported together in one *ValidationError.
func (f Filter) Normalize() (Filter, error) {
	if len(f) == 0 {
		return nil, nil
	}
	out := make(Filter, 0, len(f))
	var issues []FieldIssue
	for i, p := range f {
		np, err := p.normalize()
		if err != nil {
			issues = append(issues, FieldIssue{
				Field:   fmt.Sprintf("filter[%d]", i),
				Tag:     "filter",
				Message: err.Error(),
			})
			continue
		}
		out = append(out, np)
	}
	if len(issues) > 0 {
		return nil, NewValidationError(issues...)
	}
	return out, nil
}

func (p Predicate) normalize() (Predicate, error) {
	if !p.Field.Valid() {
		return Predicate{}, fmt.Errorf("unknown field %q", p.Field)
	}
	if !p.Op.valid() {
		return Predicate{}, fmt.Errorf("unknown operator %q on %s", p.Op, p.Field)
	}
	if p.Field == FieldID && p.Op.ordered() {
		return Predicate{}, fmt.Errorf("operator %q is not supported on id", p.Op)
	}

	if p.Op == OpIn {
		if len(p.Values) == 0 {
			return Predicate{}, fmt.Errorf("operator in on %s requires at least one value", p.Field)
		}
		vals := make([]any, len(p.Values))
		for i, v := range p.Values {
			nv, err := normalizeValue(p.Field, v)
			if err != nil {
				return Predicate{}, err
			}
			vals[i] = nv
		}
		return Predicate{Field: p.Field, Op: p.Op, Values: vals}, nil
	}

	nv, err := normalizeValue(p.Field, p.Value)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Field: p.Field, Op: p.Op, Value: nv}, nil
}

func normalizeValue(f Field, v any) (any, error) {
	switch f.kind() {
	case kindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("%s expects a text value, got %T", f, v)
	case kindInt:
		if i, ok, exact := toInt64(v); exact {
			if !ok {
				return nil, fmt.Errorf("%s expects an integer value, got %v", f, v)
			}
			return i, nil
		}
		n, ok := toFloat(v)
		if !ok || n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return nil, fmt.Errorf("%s expects an integer value, got %v", f, v)
		}
		return int64(n), nil
	case kindNumber:
		n, ok := toFloat(v)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%s expects a numeric value, got %v", f, v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("unknown field %q", f)
}

// toInt64 converts integer kinds without a float64 round trip. exact is
// false when v is not an integer kind and should be read as a float.
func toInt64(v any) (i int64, ok, exact bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true, true
	case int8:
		return int64(n), true, true
	case int16:
		return int64(n), true, true
	case int32:
		return int64(n), true, true
	case int64:
		return n, true, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64, true
	case uint8:
		return int64(n), true, true
	case uint16:
		return int64(n), true, true
	case uint32:
		return int64(n), true, true
	case uint64:
		return int64(n), n <= math.MaxInt64, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true, true
		}
	}
	return 0, false, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
