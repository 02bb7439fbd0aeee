package repository

import (
	"fmt"
	"slices"
	"strings"
)

// Projection lists the fields returned by Find. ID is always returned and
// need not be listed. An empty projection returns every field.
type Projection []Field

// Fields returns the data fields selected by p, in declaration order.
func (p Projection) Fields() []Field {
	if len(p) == 0 {
		return DataFields
	}
	out := make([]Field, 0, len(p))
	for _, f := range DataFields {
		if slices.Contains(p, f) {
			out = append(out, f)
		}
	}
	return out
}

// Validate rejects unknown fields.
func (p Projection) Validate() error {
	var issues []FieldIssue
	for _, f := range p {
		if !f.Valid() {
			issues = append(issues, FieldIssue{
				Field:   "projection",
				Tag:     "projection",
				Message: fmt.Sprintf("unknown projection field %q", f),
			})
		}
	}
	if len(issues) > 0 {
		return NewValidationError(issues...)
	}
	return nil
}

// ParseProjection parses a space separated field selector such as
// "name reps" (inclusion) or "-date -unit" (exclusion). "_id" is accepted
// as an alias of "id". Inclusion and exclusion cannot be mixed.
func ParseProjection(s string) (Projection, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil, nil
	}

	var include, exclude []Field
	for _, tok := range tokens {
		neg := strings.HasPrefix(tok, "-")
		name := strings.TrimPrefix(tok, "-")
		if name == "_id" {
			name = string(FieldID)
		}
		f := Field(name)
		if !f.Valid() {
			return nil, projectionError(fmt.Sprintf("unknown projection field %q", name))
		}
		if f == FieldID {
			if neg {
				return nil, projectionError("id is always returned and cannot be excluded")
			}
			continue
		}
		if neg {
			exclude = append(exclude, f)
		} else {
			include = append(include, f)
		}
	}

	if len(include) > 0 && len(exclude) > 0 {
		return nil, projectionError("projection cannot mix inclusion and exclusion")
	}
	if len(exclude) > 0 {
		out := make(Projection, 0, len(DataFields))
		for _, f := range DataFields {
			if !slices.Contains(exclude, f) {
				out = append(out, f)
			}
		}
		if len(out) == 0 {
			return Projection{FieldID}, nil
		}
		return out, nil
	}
	if len(include) == 0 {
		return Projection{FieldID}, nil
	}
	return include, nil
}

func projectionError(msg string) error {
	return NewValidationError(FieldIssue{Field: "projection", Tag: "projection", Message: msg})
}
