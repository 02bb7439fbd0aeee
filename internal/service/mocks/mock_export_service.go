package mocks

import (
	"context"

	"exercises/internal/repository"
	"exercises/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockExportService struct {
	mock.Mock
}

var _ service.ExportService = (*MockExportService)(nil)

func (m *MockExportService) Export(ctx context.Context, q repository.FindQuery) (*service.ExportResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}
