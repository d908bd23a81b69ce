package inventory

import (
	"context"
	"errors"
	"fmt"

	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ledger decrements stock for an order and writes one activity per line.
type Ledger interface {
	Apply(ctx context.Context, sale Sale) ([]Activity, error)
}

// OnDecrement is called after every successful stock decrement.
type OnDecrement func(line Line)

type ledger struct {
	repo        Repository
	newID       func() uuid.UUID
	onDecrement OnDecrement
}

func NewLedger(repo Repository, onDecrement OnDecrement) Ledger {
	if onDecrement == nil {
		onDecrement = func(Line) {}
	}
	return &ledger{repo: repo, newID: uuid.New, onDecrement: onDecrement}
}

// Apply runs the lines in order. It stops at the first failure and leaves
// rollback of earlier lines to the enclosing transaction.
func (l *ledger) Apply(ctx context.Context, sale Sale) ([]Activity, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("method", "Apply"),
		zap.String("order_number", sale.OrderNumber),
	)

	activities := make([]Activity, 0, len(sale.Lines))
	orderID := sale.OrderID

	for _, line := range sale.Lines {
		after, err := l.repo.DecrementStock(ctx, line)
		if errors.Is(err, ErrInsufficientStock) {
			log.Info("stock decrement rejected",
				zap.String("product_id", line.ProductID.String()),
				zap.Int("quantity", line.Quantity),
			)
			return nil, apperror.Conflict(
				fmt.Sprintf("insufficient stock for product %s", line.ProductID),
			).Wrap(err)
		}
		if err != nil {
			return nil, apperror.Internal(err)
		}
		l.onDecrement(line)

		a := Activity{
			ID:            l.newID(),
			BusinessID:    sale.BusinessID,
			ProductID:     line.ProductID,
			VariantID:     line.VariantID,
			Type:          ActivityOrderSale,
			QuantityDelta: -line.Quantity,
			StockBefore:   after + line.Quantity,
			StockAfter:    after,
			Reason:        "Order " + sale.OrderNumber,
			ActorID:       sale.ActorID,
			OrderID:       &orderID,
		}
		if err := l.repo.RecordActivity(ctx, &a); err != nil {
			return nil, apperror.Internal(err)
		}
		activities = append(activities, a)
	}

	log.Debug("inventory applied", zap.Int("activities", len(activities)))
	return activities, nil
}
