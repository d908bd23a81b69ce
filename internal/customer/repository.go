package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orderdesk-be/internal/address"
	"orderdesk-be/internal/db"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*Customer, error)
	FindByPhone(ctx context.Context, businessID uuid.UUID, canonicalPhone string) (*Customer, error)
	// Create inserts c unless another customer of the same business already
	// owns the canonical phone. created is false in that case.
	Create(ctx context.Context, c *Customer) (created bool, err error)
	UpdateContact(ctx context.Context, businessID, id uuid.UUID, name string, email *string) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const selectCustomer = `
	SELECT id, business_id, name, phone, canonical_phone, email, tier,
	       address, address_line, added_by_admin, created_at, updated_at
	FROM customers
`

func scanCustomer(row *sql.Row) (*Customer, error) {
	var (
		c     Customer
		email sql.NullString
		addr  address.Address
		raw   []byte
	)
	err := row.Scan(
		&c.ID, &c.BusinessID, &c.Name, &c.Phone, &c.CanonicalPhone, &email, &c.Tier,
		&raw, &c.AddressLine, &c.AddedByAdmin, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		c.Email = &email.String
	}
	if len(raw) > 0 {
		if err := addr.Scan(raw); err != nil {
			return nil, fmt.Errorf("decode customer address: %w", err)
		}
		c.Address = &addr
	}
	return &c, nil
}

func (r *repository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		selectCustomer+` WHERE business_id = $1 AND id = $2`,
		businessID, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to get customer",
			zap.String("customer_id", id.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *repository) FindByPhone(ctx context.Context, businessID uuid.UUID, canonicalPhone string) (*Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		selectCustomer+` WHERE business_id = $1 AND canonical_phone = $2`,
		businessID, canonicalPhone,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to find customer by phone",
			zap.String("business_id", businessID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("find customer by phone: %w", err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, c *Customer) (bool, error) {
	var addr any
	if c.Address != nil {
		addr = *c.Address
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO customers (
			id, business_id, name, phone, canonical_phone, email, tier,
			address, address_line, added_by_admin
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (business_id, canonical_phone) DO NOTHING
		RETURNING created_at, updated_at
	`,
		c.ID, c.BusinessID, c.Name, c.Phone, c.CanonicalPhone, c.Email, c.Tier,
		addr, c.AddressLine, c.AddedByAdmin,
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert customer",
			zap.String("business_id", c.BusinessID.String()),
			zap.Error(err),
		)
		return false, fmt.Errorf("create customer: %w", err)
	}
	return true, nil
}

func (r *repository) UpdateContact(ctx context.Context, businessID, id uuid.UUID, name string, email *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $1, email = COALESCE($2, email), updated_at = NOW()
		WHERE business_id = $3 AND id = $4
	`, name, email, businessID, id)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to update customer contact",
			zap.String("customer_id", id.String()),
			zap.Error(err),
		)
		return fmt.Errorf("update customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if affected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
