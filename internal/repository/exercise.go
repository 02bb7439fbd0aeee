package repository

import (
	"context"

	"exercises/internal/model"
)

// ExerciseRepository defines data access for exercise records.
// Implementations live in subpackages (mongo, postgres) and contain no business logic.
type ExerciseRepository interface {
	// Create validates and persists a new exercise.
	// Any ID on the input is ignored; the store assigns one.
	// Returns the stored exercise including its generated ID.
	Create(ctx context.Context, ex model.Exercise) (*model.Exercise, error)

	// Find returns the exercises matching q in the store's natural order.
	// The result is never nil.
	Find(ctx context.Context, q FindQuery) ([]model.Exercise, error)

	// FindByID returns the exercise with the given ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Exercise, error)

	// DeleteByID removes the exercise with the given ID and reports how many
	// records were removed (0 or 1). A missing ID is not an error.
	DeleteByID(ctx context.Context, id string) (int64, error)

	// Replace overwrites every field except the ID of the exercise with the given ID.
	// It reports how many records matched (0 or 1).
	Replace(ctx context.Context, id string, ex model.Exercise) (int64, error)
}

// FindQuery selects exercises for Find.
type FindQuery struct {
	// Filter predicates are ANDed. An empty filter matches every record.
	Filter Filter
	// Projection limits the returned fields. ID is always returned.
	Projection Projection
	// Limit caps the result count; 0 means unlimited.
	Limit int64
}

// Normalize validates q and returns a copy whose filter values carry the
// canonical Go type of their field (string, int64 or float64).
func (q FindQuery) Normalize() (FindQuery, error) {
	if q.Limit < 0 {
		return FindQuery{}, NewValidationError(FieldIssue{
			Field:   "limit",
			Tag:     "gte",
			Message: "limit must be greater than or equal to 0",
		})
	}
	filter, err := q.Filter.Normalize()
	if err != nil {
		return FindQuery{}, err
	}
	if err := q.Projection.Validate(); err != nil {
		return FindQuery{}, err
	}
	q.Filter = filter
	return q, nil
}
