package repository

import (
	"context"
	"errors"
	"math"
	"testing"

	"exercises/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreError(t *testing.T) {
	assert.Nil(t, NewStoreError("find", nil))

	err := NewStoreError("find", context.DeadlineExceeded)
	assert.EqualError(t, err, "store find: context deadline exceeded")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsStoreError(err))
	assert.False(t, IsStoreError(errors.New("other")))
}

func TestValidateExercise(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := ValidateExercise(model.Exercise{Name: "squat", Reps: 5, Weight: 100, Unit: "lbs", Date: "2024-01-01"})
		assert.NoError(t, err)
	})

	t.Run("bodyweight set with zero weight", func(t *testing.T) {
		err := ValidateExercise(model.Exercise{Name: "pull-up", Reps: 10, Unit: "lbs", Date: "2024-01-01"})
		assert.NoError(t, err)
	})

	t.Run("reps beyond the integer column", func(t *testing.T) {
		err := ValidateExercise(model.Exercise{Name: "squat", Reps: 3_000_000_000, Weight: 100, Unit: "lbs", Date: "2024-01-01"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "reps must be less than or equal to 2147483647")
	})

	t.Run("reps at the integer column maximum", func(t *testing.T) {
		err := ValidateExercise(model.Exercise{Name: "squat", Reps: math.MaxInt32, Weight: 100, Unit: "lbs", Date: "2024-01-01"})
		assert.NoError(t, err)
	})

	t.Run("missing fields", func(t *testing.T) {
		err := ValidateExercise(model.Exercise{Reps: -1, Weight: 10})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		fields := make([]string, 0, len(verr.Issues))
		for _, is := range verr.Issues {
			fields = append(fields, is.Field)
		}
		assert.Equal(t, []string{"name", "reps", "unit", "date"}, fields)
		assert.Contains(t, err.Error(), "name is required")
	})
}
