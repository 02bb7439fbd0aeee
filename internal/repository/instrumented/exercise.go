package instrumented

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"exercises/internal/model"
	"exercises/internal/repository"
)

// Outcome label values.
const (
	outcomeSuccess    = "success"
	outcomeNotFound   = "not_found"
	outcomeValidation = "validation_error"
	outcomeStore      = "store_error"
	outcomeError      = "error"
)

// ExerciseRepository decorates a repository.ExerciseRepository with a span
// and Prometheus samples per call. Results and errors pass through unchanged.
type ExerciseRepository struct {
	next    repository.ExerciseRepository
	metrics *Metrics
	tracer  trace.Tracer
	backend string
}

// New wraps next. backend names the store ("mongo", "postgres") on spans.
func New(next repository.ExerciseRepository, metrics *Metrics, tracer trace.Tracer, backend string) *ExerciseRepository {
	return &ExerciseRepository{next: next, metrics: metrics, tracer: tracer, backend: backend}
}

var _ repository.ExerciseRepository = (*ExerciseRepository)(nil)

func (r *ExerciseRepository) Create(ctx context.Context, ex model.Exercise) (*model.Exercise, error) {
	ctx, done := r.start(ctx, "create")
	out, err := r.next.Create(ctx, ex)
	done(err)
	return out, err
}

func (r *ExerciseRepository) Find(ctx context.Context, q repository.FindQuery) ([]model.Exercise, error) {
	ctx, done := r.start(ctx, "find",
		attribute.Int("exercise.filter.predicates", len(q.Filter)),
		attribute.Int64("exercise.limit", q.Limit),
	)
	out, err := r.next.Find(ctx, q)
	if err == nil {
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("exercise.results", len(out)))
	}
	done(err)
	return out, err
}

func (r *ExerciseRepository) FindByID(ctx context.Context, id string) (*model.Exercise, error) {
	ctx, done := r.start(ctx, "find_by_id", attribute.String("exercise.id", id))
	out, err := r.next.FindByID(ctx, id)
	done(err)
	return out, err
}

func (r *ExerciseRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	ctx, done := r.start(ctx, "delete_by_id", attribute.String("exercise.id", id))
	n, err := r.next.DeleteByID(ctx, id)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("exercise.affected", n))
	done(err)
	return n, err
}

func (r *ExerciseRepository) Replace(ctx context.Context, id string, ex model.Exercise) (int64, error) {
	ctx, done := r.start(ctx, "replace", attribute.String("exercise.id", id))
	n, err := r.next.Replace(ctx, id, ex)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("exercise.affected", n))
	done(err)
	return n, err
}

func (r *ExerciseRepository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	attrs = append(attrs,
		attribute.String("db.system", r.backend),
		attribute.String("db.operation", op),
	)
	ctx, span := r.tracer.Start(ctx, "ExerciseRepository."+op, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		outcome := outcomeOf(err)
		if outcome == outcomeStore || outcome == outcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("exercise.outcome", outcome))
		span.End()

		r.metrics.operations.WithLabelValues(op, outcome).Inc()
		r.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, repository.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, repository.ErrValidation):
		return outcomeValidation
	case repository.IsStoreError(err):
		return outcomeStore
	default:
		return outcomeError
	}
}
