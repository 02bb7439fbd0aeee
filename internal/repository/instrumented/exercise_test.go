package instrumented

import (
	"context"
	"errors"
	"testing"

	"exercises/internal/model"
	"exercises/internal/repository"
	repoMocks "exercises/internal/repository/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newInstrumented(t *testing.T) (*ExerciseRepository, *repoMocks.MockExerciseRepository, *Metrics, *tracetest.SpanRecorder) {
	t.Helper()
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	mRepo := new(repoMocks.MockExerciseRepository)
	return New(mRepo, metrics, tp.Tracer("test"), "mongo"), mRepo, metrics, sr
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestExerciseRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo, mRepo, metrics, sr := newInstrumented(t)
	in := model.Exercise{Name: "squat", Reps: 5, Weight: 100, Unit: "lbs", Date: "2024-01-01"}
	stored := in
	stored.ID = "abc"

	mRepo.On("Create", mock.Anything, in).Return(&stored, nil).Once()

	got, err := repo.Create(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, &stored, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("create", outcomeSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ExerciseRepository.create", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	mRepo.AssertExpectations(t)
}

func TestExerciseRepository_Outcomes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		setup       func(m *repoMocks.MockExerciseRepository)
		call        func(r *ExerciseRepository) error
		op          string
		outcome     string
		errorStatus bool
	}{
		{
			name: "not found",
			setup: func(m *repoMocks.MockExerciseRepository) {
				m.On("FindByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
			},
			call: func(r *ExerciseRepository) error {
				_, err := r.FindByID(ctx, "missing")
				return err
			},
			op:      "find_by_id",
			outcome: outcomeNotFound,
		},
		{
			name: "validation",
			setup: func(m *repoMocks.MockExerciseRepository) {
				m.On("Find", mock.Anything, repository.FindQuery{Limit: -1}).
					Return(nil, repository.NewValidationError(repository.FieldIssue{Field: "limit", Message: "bad"}))
			},
			call: func(r *ExerciseRepository) error {
				_, err := r.Find(ctx, repository.FindQuery{Limit: -1})
				return err
			},
			op:      "find",
			outcome: outcomeValidation,
		},
		{
			name: "store error",
			setup: func(m *repoMocks.MockExerciseRepository) {
				m.On("DeleteByID", mock.Anything, "id").Return(int64(0), repository.NewStoreError("delete_by_id", errors.New("down")))
			},
			call: func(r *ExerciseRepository) error {
				_, err := r.DeleteByID(ctx, "id")
				return err
			},
			op:          "delete_by_id",
			outcome:     outcomeStore,
			errorStatus: true,
		},
		{
			name: "unclassified error",
			setup: func(m *repoMocks.MockExerciseRepository) {
				m.On("Replace", mock.Anything, "id", model.Exercise{}).Return(int64(0), context.Canceled)
			},
			call: func(r *ExerciseRepository) error {
				_, err := r.Replace(ctx, "id", model.Exercise{})
				return err
			},
			op:          "replace",
			outcome:     outcomeError,
			errorStatus: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mRepo, metrics, sr := newInstrumented(t)
			tt.setup(mRepo)

			err := tt.call(repo)

			assert.Error(t, err)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues(tt.op, tt.outcome)))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			if tt.errorStatus {
				assert.Equal(t, codes.Error, spans[0].Status().Code)
			} else {
				assert.Equal(t, codes.Unset, spans[0].Status().Code)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestExerciseRepository_PassesResultsThrough(t *testing.T) {
	ctx := context.Background()
	repo, mRepo, _, _ := newInstrumented(t)
	items := []model.Exercise{{ID: "1"}, {ID: "2"}}

	mRepo.On("Find", mock.Anything, repository.FindQuery{}).Return(items, nil).Once()
	mRepo.On("DeleteByID", mock.Anything, "1").Return(int64(1), nil).Once()
	mRepo.On("Replace", mock.Anything, "2", model.Exercise{Name: "x"}).Return(int64(1), nil).Once()

	got, err := repo.Find(ctx, repository.FindQuery{})
	require.NoError(t, err)
	assert.Equal(t, items, got)

	n, err := repo.DeleteByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Replace(ctx, "2", model.Exercise{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mRepo.AssertExpectations(t)
}
