package inventory

import (
	"context"
	"errors"
	"testing"

	"orderdesk-be/internal/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) DecrementStock(ctx context.Context, line Line) (int, error) {
	args := m.Called(ctx, line)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RecordActivity(ctx context.Context, a *Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func TestLedger_Apply(t *testing.T) {
	ctx := context.Background()
	variantID := uuid.New()
	lineA := Line{ProductID: uuid.New(), Quantity: 3}
	lineB := Line{ProductID: uuid.New(), VariantID: &variantID, Quantity: 1}
	sale := Sale{
		BusinessID:  uuid.New(),
		OrderID:     uuid.New(),
		OrderNumber: "WO-000042",
		ActorID:     "staff-9",
		Lines:       []Line{lineA, lineB},
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("DecrementStock", ctx, lineA).Return(7, nil)
		repo.On("DecrementStock", ctx, lineB).Return(0, nil)
		repo.On("RecordActivity", ctx, mock.AnythingOfType("*inventory.Activity")).Return(nil)

		decremented := 0
		activities, err := NewLedger(repo, func(Line) { decremented++ }).Apply(ctx, sale)

		require.NoError(t, err)
		require.Len(t, activities, 2)
		assert.Equal(t, 2, decremented)

		a := activities[0]
		assert.Equal(t, ActivityOrderSale, a.Type)
		assert.Equal(t, -3, a.QuantityDelta)
		assert.Equal(t, 10, a.StockBefore)
		assert.Equal(t, 7, a.StockAfter)
		assert.Equal(t, "Order WO-000042", a.Reason)
		assert.Equal(t, "staff-9", a.ActorID)
		assert.Equal(t, sale.OrderID, *a.OrderID)

		assert.Equal(t, &variantID, activities[1].VariantID)
		assert.Equal(t, 1, activities[1].StockBefore)
		assert.Equal(t, 0, activities[1].StockAfter)
		repo.AssertExpectations(t)
	})

	t.Run("Second line short on stock stops", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("DecrementStock", ctx, lineA).Return(7, nil)
		repo.On("RecordActivity", ctx, mock.Anything).Return(nil).Once()
		repo.On("DecrementStock", ctx, lineB).Return(0, ErrInsufficientStock)

		activities, err := NewLedger(repo, nil).Apply(ctx, sale)

		assert.Nil(t, activities)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		assert.ErrorIs(t, err, ErrInsufficientStock)
		repo.AssertNumberOfCalls(t, "RecordActivity", 1)
	})

	t.Run("Store failure is internal", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("DecrementStock", ctx, lineA).Return(0, errors.New("deadlock detected"))

		_, err := NewLedger(repo, nil).Apply(ctx, sale)

		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	})

	t.Run("Activity insert failure is internal", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("DecrementStock", ctx, lineA).Return(7, nil)
		repo.On("RecordActivity", ctx, mock.Anything).Return(errors.New("fk violation"))

		_, err := NewLedger(repo, nil).Apply(ctx, sale)

		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	})
}
