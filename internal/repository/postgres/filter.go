package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"exercises/internal/repository"
)

var columns = map[repository.Field]string{
	repository.FieldID:     "id",
	repository.FieldName:   "name",
	repository.FieldReps:   "reps",
	repository.FieldWeight: "weight",
	repository.FieldUnit:   "unit",
	repository.FieldDate:   "date",
}

var comparators = map[repository.Op]string{
	repository.OpEq:  "=",
	repository.OpNe:  "<>",
	repository.OpGt:  ">",
	repository.OpGte: ">=",
	repository.OpLt:  "<",
	repository.OpLte: "<=",
}

func column(f repository.Field) string {
	return columns[f]
}

// buildWhere renders a normalized filter as a WHERE clause body with
// positional parameters starting at $1. It returns "" for an empty filter.
// id predicates holding non-UUID values are folded into constants since the
// column cannot contain them.
func buildWhere(f repository.Filter) (string, []any) {
	if len(f) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(f))
	var args []any
	for _, p := range f {
		col := column(p.Field)

		if p.Op == repository.OpIn {
			vals := p.Values
			if p.Field == repository.FieldID {
				vals = validUUIDs(vals)
			}
			if len(vals) == 0 {
				clauses = append(clauses, "FALSE")
				continue
			}
			ph := make([]string, 0, len(vals))
			for _, v := range vals {
				args = append(args, v)
				ph = append(ph, fmt.Sprintf("$%d", len(args)))
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", col, strings.Join(ph, ", ")))
			continue
		}

		val := p.Value
		if p.Field == repository.FieldID {
			s, _ := val.(string)
			id, ok := canonicalUUID(s)
			if !ok {
				if p.Op == repository.OpNe {
					clauses = append(clauses, "TRUE")
				} else {
					clauses = append(clauses, "FALSE")
				}
				continue
			}
			val = id
		}

		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", col, comparators[p.Op], len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func validUUIDs(vals []any) []any {
	out := make([]any, 0, len(vals))
	for _, v := range vals {
		s, _ := v.(string)
		if id, ok := canonicalUUID(s); ok {
			out = append(out, id)
		}
	}
	return out
}

// canonicalUUID parses any form uuid.Parse accepts (braces, urn prefix,
// no hyphens) and returns the hyphenated form Postgres accepts.
func canonicalUUID(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
