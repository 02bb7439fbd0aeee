package mocks

import (
	"context"

	"exercises/internal/model"
	"exercises/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockExerciseRepository struct {
	mock.Mock
}

var _ repository.ExerciseRepository = (*MockExerciseRepository)(nil)

func (m *MockExerciseRepository) Create(ctx context.Context, ex model.Exercise) (*model.Exercise, error) {
	args := m.Called(ctx, ex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Exercise), args.Error(1)
}

func (m *MockExerciseRepository) Find(ctx context.Context, q repository.FindQuery) ([]model.Exercise, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Exercise), args.Error(1)
}

func (m *MockExerciseRepository) FindByID(ctx context.Context, id string) (*model.Exercise, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Exercise), args.Error(1)
}

func (m *MockExerciseRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExerciseRepository) Replace(ctx context.Context, id string, ex model.Exercise) (int64, error) {
	args := m.Called(ctx, id, ex)
	return args.Get(0).(int64), args.Error(1)
}
