package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"exercises/internal/model"
	"exercises/internal/repository"
)

// ExercisePostgres is a PostgreSQL implementation of repository.ExerciseRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// IDs are UUIDs generated by the database.
type ExercisePostgres struct {
	db *sql.DB
}

// NewExercisePostgres creates a new ExercisePostgres repository.
func NewExercisePostgres(db *sql.DB) *ExercisePostgres {
	return &ExercisePostgres{db: db}
}

var _ repository.ExerciseRepository = (*ExercisePostgres)(nil)

// Create inserts a new exercise row and returns the stored record.
func (r *ExercisePostgres) Create(ctx context.Context, ex model.Exercise) (*model.Exercise, error) {
	if err := repository.ValidateExercise(ex); err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO exercises (name, reps, weight, unit, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, reps, weight, unit, date
	`
	row := r.db.QueryRowContext(ctx, q,
		ex.Name,
		ex.Reps,
		ex.Weight,
		ex.Unit,
		ex.Date,
	)
	var out model.Exercise
	if err := row.Scan(scanTargets(&out, repository.DataFields)...); err != nil {
		return nil, repository.NewStoreError("create", err)
	}
	return &out, nil
}

// Find returns exercises matching the query's filter, restricted to its projection.
func (r *ExercisePostgres) Find(ctx context.Context, fq repository.FindQuery) ([]model.Exercise, error) {
	fq, err := fq.Normalize()
	if err != nil {
		return nil, err
	}

	fields := fq.Projection.Fields()
	where, args := buildWhere(fq.Filter)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns(fields))
	sb.WriteString(" FROM exercises")
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if fq.Limit > 0 {
		args = append(args, fq.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, repository.NewStoreError("find", err)
	}
	defer rows.Close()

	items := make([]model.Exercise, 0)
	for rows.Next() {
		var ex model.Exercise
		if err := rows.Scan(scanTargets(&ex, fields)...); err != nil {
			return nil, repository.NewStoreError("find", err)
		}
		items = append(items, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.NewStoreError("find", err)
	}
	return items, nil
}

// FindByID fetches a single exercise by its ID.
// IDs that are not UUIDs cannot exist and yield repository.ErrNotFound.
func (r *ExercisePostgres) FindByID(ctx context.Context, id string) (*model.Exercise, error) {
	id, ok := canonicalUUID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}

	const q = `
		SELECT id, name, reps, weight, unit, date
		FROM exercises
		WHERE id = $1
	`
	var ex model.Exercise
	if err := r.db.QueryRowContext(ctx, q, id).Scan(scanTargets(&ex, repository.DataFields)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, repository.NewStoreError("find_by_id", err)
	}
	return &ex, nil
}

// DeleteByID removes an exercise by ID and returns the number of rows removed.
func (r *ExercisePostgres) DeleteByID(ctx context.Context, id string) (int64, error) {
	id, ok := canonicalUUID(id)
	if !ok {
		return 0, nil
	}

	const q = `DELETE FROM exercises WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, repository.NewStoreError("delete_by_id", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, repository.NewStoreError("delete_by_id", err)
	}
	return n, nil
}

// Replace overwrites the five data columns of the row with the given ID and
// returns the number of rows matched.
func (r *ExercisePostgres) Replace(ctx context.Context, id string, ex model.Exercise) (int64, error) {
	if err := repository.ValidateExercise(ex); err != nil {
		return 0, err
	}
	id, ok := canonicalUUID(id)
	if !ok {
		return 0, nil
	}

	const q = `
		UPDATE exercises
		SET name = $2, reps = $3, weight = $4, unit = $5, date = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, ex.Name, ex.Reps, ex.Weight, ex.Unit, ex.Date)
	if err != nil {
		return 0, repository.NewStoreError("replace", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, repository.NewStoreError("replace", err)
	}
	return n, nil
}

// scanTargets returns Scan destinations for id followed by fields.
func scanTargets(ex *model.Exercise, fields []repository.Field) []any {
	targets := make([]any, 0, len(fields)+1)
	targets = append(targets, &ex.ID)
	for _, f := range fields {
		switch f {
		case repository.FieldName:
			targets = append(targets, &ex.Name)
		case repository.FieldReps:
			targets = append(targets, &ex.Reps)
		case repository.FieldWeight:
			targets = append(targets, &ex.Weight)
		case repository.FieldUnit:
			targets = append(targets, &ex.Unit)
		case repository.FieldDate:
			targets = append(targets, &ex.Date)
		}
	}
	return targets
}

func selectColumns(fields []repository.Field) string {
	cols := make([]string, 0, len(fields)+1)
	cols = append(cols, column(repository.FieldID))
	for _, f := range fields {
		cols = append(cols, column(f))
	}
	return strings.Join(cols, ", ")
}
