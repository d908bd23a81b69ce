package order

import (
	"context"

	"orderdesk-be/internal/business"
	"orderdesk-be/internal/customer"
	"orderdesk-be/internal/dispatch"
	"orderdesk-be/internal/inventory"
	"orderdesk-be/internal/product"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) Find(ctx context.Context, q Query) ([]*Order, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, businessID, orderID uuid.UUID) (*Order, error) {
	args := m.Called(ctx, businessID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

type MockSequencer struct {
	mock.Mock
}

func (m *MockSequencer) Next(ctx context.Context, businessID uuid.UUID) (int64, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).(int64), args.Error(1)
}

type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*business.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByPhone(ctx context.Context, businessID uuid.UUID, canonicalPhone string) (*customer.Customer, error) {
	args := m.Called(ctx, businessID, canonicalPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *customer.Customer) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) UpdateContact(ctx context.Context, businessID, id uuid.UUID, name string, email *string) error {
	args := m.Called(ctx, businessID, id, name, email)
	return args.Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Find(ctx context.Context, q product.Query) ([]*product.Product, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockCatalog) GetVariant(ctx context.Context, productID, variantID uuid.UUID) (*product.Variant, error) {
	args := m.Called(ctx, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Variant), args.Error(1)
}

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) DecrementStock(ctx context.Context, line inventory.Line) (int, error) {
	args := m.Called(ctx, line)
	return args.Int(0), args.Error(1)
}

func (m *MockInventory) RecordActivity(ctx context.Context, a *inventory.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Enqueue(ctx context.Context, e dispatch.Event) bool {
	args := m.Called(ctx, e)
	return args.Bool(0)
}

// fakeUnitOfWork hands the mocks to fn and reports whether fn succeeded,
// standing in for commit and rollback.
type fakeUnitOfWork struct {
	stores     Stores
	calls      int
	rolledBack bool
}

func (u *fakeUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	u.calls++
	if err := fn(ctx, u.stores); err != nil {
		u.rolledBack = true
		return err
	}
	return nil
}
