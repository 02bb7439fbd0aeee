package model

// Exercise is a single logged exercise set.
// This is a pure domain model with no database-specific dependencies or tags;
// store-specific shapes live next to each repository implementation.
// The validate tags describe the fields every persisted record must carry.
type Exercise struct {
	ID     string  `json:"id"`
	Name   string  `json:"name" validate:"required,notblank"`
	Reps   int     `json:"reps" validate:"gte=0,lte=2147483647"`
	Weight float64 `json:"weight" validate:"gte=0"`
	Unit   string  `json:"unit" validate:"required,notblank"`
	Date   string  `json:"date" validate:"required,notblank"`
}
