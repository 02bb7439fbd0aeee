package repository

import (
	"errors"

	"exercises/internal/model"
	"exercises/internal/validator"
)

var exerciseValidator = validator.New()

// ValidateExercise checks that every required field of ex is set.
// The ID is not inspected.
func ValidateExercise(ex model.Exercise) error {
	err := exerciseValidator.Struct(ex)
	if err == nil {
		return nil
	}
	var ferrs validator.FieldErrors
	if errors.As(err, &ferrs) {
		return NewValidationError(ferrs...)
	}
	return err
}
