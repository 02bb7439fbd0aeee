package repository

// Field names an exercise attribute usable in filters and projections.
type Field string

const (
	FieldID     Field = "id"
	FieldName   Field = "name"
	FieldReps   Field = "reps"
	FieldWeight Field = "weight"
	FieldUnit   Field = "unit"
	FieldDate   Field = "date"
)

// DataFields are the fields set by callers, in declaration order.
var DataFields = []Field{FieldName, FieldReps, FieldWeight, FieldUnit, FieldDate}

type fieldKind int

const (
	kindText fieldKind = iota + 1
	kindInt
	kindNumber
)

var fieldKinds = map[Field]fieldKind{
	FieldID:     kindText,
	FieldName:   kindText,
	FieldReps:   kindInt,
	FieldWeight: kindNumber,
	FieldUnit:   kindText,
	FieldDate:   kindText,
}

// Valid reports whether f is a known exercise field.
func (f Field) Valid() bool {
	_, ok := fieldKinds[f]
	return ok
}

func (f Field) kind() fieldKind {
	return fieldKinds[f]
}
