package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orderdesk-be/internal/db"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	// DecrementStock atomically lowers the counter by qty when enough stock
	// is left and returns the counter value after the update.
	DecrementStock(ctx context.Context, line Line) (after int, err error)
	RecordActivity(ctx context.Context, a *Activity) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) DecrementStock(ctx context.Context, line Line) (int, error) {
	var (
		query string
		id    uuid.UUID
	)
	if line.VariantID != nil {
		id = *line.VariantID
		query = `
			UPDATE variants
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1
			RETURNING stock`
	} else {
		id = line.ProductID
		query = `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND track_inventory = TRUE AND stock >= $1
			RETURNING stock`
	}

	var after int
	err := r.db.QueryRowContext(ctx, query, line.Quantity, id).Scan(&after)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientStock
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to decrement stock",
			zap.String("product_id", line.ProductID.String()),
			zap.Int("quantity", line.Quantity),
			zap.Error(err),
		)
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	return after, nil
}

func (r *repository) RecordActivity(ctx context.Context, a *Activity) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO inventory_activities (
			id, business_id, product_id, variant_id, type, quantity_delta,
			stock_before, stock_after, reason, actor_id, order_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`,
		a.ID, a.BusinessID, a.ProductID, a.VariantID, a.Type, a.QuantityDelta,
		a.StockBefore, a.StockAfter, a.Reason, a.ActorID, a.OrderID,
	).Scan(&a.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to record inventory activity",
			zap.String("product_id", a.ProductID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("record inventory activity: %w", err)
	}
	return nil
}
