package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orderdesk-be/internal/db"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	Find(ctx context.Context, q Query) ([]*Product, error)
	GetVariant(ctx context.Context, productID, variantID uuid.UUID) (*Variant, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) Find(ctx context.Context, q Query) ([]*Product, error) {
	where, args, page := q.build()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Product.Find"),
		zap.String("query_type", fmt.Sprintf("%T", q)),
	)

	query := `
		SELECT p.id, p.business_id, p.name, p.price, p.original_price,
		       p.stock, p.track_inventory, p.status
		FROM products p
		WHERE ` + where + page

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()

	var (
		products []*Product
		ids      []string
		byID     = map[uuid.UUID]*Product{}
	)
	for rows.Next() {
		var (
			p        Product
			original decimal.NullDecimal
		)
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Name, &p.Price, &original,
			&p.Stock, &p.TrackInventory, &p.Status); err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if original.Valid {
			p.OriginalPrice = &original.Decimal
		}
		products = append(products, &p)
		ids = append(ids, p.ID.String())
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	if len(products) == 0 {
		return products, nil
	}
	if err := r.attachModifiers(ctx, ids, byID); err != nil {
		log.Error("failed to load modifiers", zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (r *repository) attachModifiers(ctx context.Context, ids []string, byID map[uuid.UUID]*Product) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, price_delta
		FROM product_modifiers
		WHERE product_id = ANY($1)
		ORDER BY name ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load modifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m         Modifier
			productID uuid.UUID
		)
		if err := rows.Scan(&m.ID, &productID, &m.Name, &m.PriceDelta); err != nil {
			return fmt.Errorf("scan modifier: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Modifiers = append(p.Modifiers, m)
		}
	}
	return rows.Err()
}

func (r *repository) GetVariant(ctx context.Context, productID, variantID uuid.UUID) (*Variant, error) {
	var (
		v        Variant
		original decimal.NullDecimal
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, name, price, original_price, stock
		FROM variants
		WHERE id = $1 AND product_id = $2
	`, variantID, productID).Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &original, &v.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to get variant",
			zap.String("variant_id", variantID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get variant: %w", err)
	}
	if original.Valid {
		v.OriginalPrice = &original.Decimal
	}
	return &v, nil
}
