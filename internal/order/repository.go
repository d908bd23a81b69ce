package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orderdesk-be/internal/address"
	"orderdesk-be/internal/db"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	Find(ctx context.Context, q Query) ([]*Order, error)
	GetByID(ctx context.Context, businessID, orderID uuid.UUID) (*Order, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

// Create inserts the order row and its items. Callers run it inside the
// order transaction.
func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Order.Create"),
		zap.String("order_number", o.OrderNumber),
	)

	var addr any
	if o.DeliveryAddress != nil {
		addr = *o.DeliveryAddress
	}
	var lat, lon *float64
	if o.DeliveryAddress != nil {
		lat, lon = o.DeliveryAddress.Lat, o.DeliveryAddress.Lon
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, business_id, order_number, status, type, customer_id, customer_name,
			subtotal, delivery_fee, total, delivery_address, delivery_lat, delivery_lon,
			delivery_distance_km, scheduled_at, notes, payment_method, payment_status, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING created_at, updated_at
	`,
		o.ID, o.BusinessID, o.OrderNumber, o.Status, o.Type, o.CustomerID, o.CustomerName,
		o.Subtotal, o.DeliveryFee, o.Total, addr, lat, lon,
		o.DeliveryDistanceKm, o.ScheduledAt, o.Notes, o.PaymentMethod, o.PaymentStatus, o.CreatedBy,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			log.Warn("order number collision", zap.Error(err))
			return ErrDuplicateNumber
		}
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		it.Position = i
		modifiers := make([]string, 0, len(it.ModifierIDs))
		for _, id := range it.ModifierIDs {
			modifiers = append(modifiers, id.String())
		}

		_, err := r.db.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, variant_id, name, quantity,
				unit_price, original_price, modifier_ids, line_total, position
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`,
			it.ID, it.OrderID, it.ProductID, it.VariantID, it.Name, it.Quantity,
			it.UnitPrice, it.OriginalPrice, pq.Array(modifiers), it.LineTotal, it.Position,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.String("product_id", it.ProductID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

func (r *repository) Find(ctx context.Context, q Query) ([]*Order, error) {
	where, args, page := q.build()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Order.Find"),
		zap.String("query_type", fmt.Sprintf("%T", q)),
	)

	query := `
		SELECT o.id, o.business_id, o.order_number, o.status, o.type,
		       o.customer_id, o.customer_name, COALESCE(c.phone, ''), c.email,
		       o.subtotal, o.delivery_fee, o.total, o.delivery_address,
		       o.delivery_distance_km, o.scheduled_at, o.notes, o.payment_method,
		       o.payment_status, o.created_by, o.created_at, o.updated_at
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE ` + where + page

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []*Order
		ids    []string
		byID   = map[uuid.UUID]*Order{}
	)
	for rows.Next() {
		var (
			o         Order
			email     sql.NullString
			raw       []byte
			distance  sql.NullFloat64
			scheduled sql.NullTime
		)
		if err := rows.Scan(
			&o.ID, &o.BusinessID, &o.OrderNumber, &o.Status, &o.Type,
			&o.CustomerID, &o.CustomerName, &o.CustomerPhone, &email,
			&o.Subtotal, &o.DeliveryFee, &o.Total, &raw,
			&distance, &scheduled, &o.Notes, &o.PaymentMethod,
			&o.PaymentStatus, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			log.Error("failed to scan order", zap.Error(err))
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if email.Valid {
			o.CustomerEmail = &email.String
		}
		if len(raw) > 0 {
			var addr address.Address
			if err := addr.Scan(raw); err != nil {
				return nil, fmt.Errorf("decode delivery address: %w", err)
			}
			o.DeliveryAddress = &addr
		}
		if distance.Valid {
			o.DeliveryDistanceKm = &distance.Float64
		}
		if scheduled.Valid {
			o.ScheduledAt = &scheduled.Time
		}
		orders = append(orders, &o)
		ids = append(ids, o.ID.String())
		byID[o.ID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}
	if err := r.attachItems(ctx, ids, byID); err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (r *repository) attachItems(ctx context.Context, ids []string, byID map[uuid.UUID]*Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, variant_id, name, quantity,
		       unit_price, original_price, modifier_ids, line_total, position
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it        Item
			variantID uuid.NullUUID
			original  decimal.NullDecimal
			modifiers []string
		)
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &variantID, &it.Name, &it.Quantity,
			&it.UnitPrice, &original, pq.Array(&modifiers), &it.LineTotal, &it.Position,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if variantID.Valid {
			it.VariantID = &variantID.UUID
		}
		if original.Valid {
			it.OriginalPrice = &original.Decimal
		}
		for _, m := range modifiers {
			id, err := uuid.Parse(m)
			if err != nil {
				return fmt.Errorf("parse modifier id: %w", err)
			}
			it.ModifierIDs = append(it.ModifierIDs, id)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *repository) GetByID(ctx context.Context, businessID, orderID uuid.UUID) (*Order, error) {
	orders, err := r.Find(ctx, ByID{BusinessID: businessID, OrderID: orderID})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders[0], nil
}
