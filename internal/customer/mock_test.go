package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Customer, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) FindByPhone(ctx context.Context, businessID uuid.UUID, canonicalPhone string) (*Customer, error) {
	args := m.Called(ctx, businessID, canonicalPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, c *Customer) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpdateContact(ctx context.Context, businessID, id uuid.UUID, name string, email *string) error {
	args := m.Called(ctx, businessID, id, name, email)
	return args.Error(0)
}
