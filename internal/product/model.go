package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

type Modifier struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"priceDelta"`
}

type Variant struct {
	ID            uuid.UUID        `json:"id"`
	ProductID     uuid.UUID        `json:"productId"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Stock         int              `json:"stock"`
}

type Product struct {
	ID             uuid.UUID        `json:"id"`
	BusinessID     uuid.UUID        `json:"businessId"`
	Name           string           `json:"name"`
	Price          decimal.Decimal  `json:"price"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice,omitempty"`
	Stock          int              `json:"stock"`
	TrackInventory bool             `json:"trackInventory"`
	Status         Status           `json:"status"`
	Modifiers      []Modifier       `json:"modifiers"`
}

func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

// LineRequest is one requested order line.
type LineRequest struct {
	ProductID   uuid.UUID   `json:"productId" validate:"required"`
	VariantID   *uuid.UUID  `json:"variantId,omitempty"`
	Quantity    int         `json:"quantity" validate:"required,min=1"`
	ModifierIDs []uuid.UUID `json:"modifierIds,omitempty"`
}

// PricedLine is a validated line with prices snapshotted at order time.
// UnitPrice and OriginalPrice include the matched modifier deltas.
type PricedLine struct {
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	Name           string
	Quantity       int
	UnitPrice      decimal.Decimal
	OriginalPrice  *decimal.Decimal
	ModifierIDs    []uuid.UUID
	LineTotal      decimal.Decimal
	TrackInventory bool
}

type Pricing struct {
	Lines    []PricedLine
	Subtotal decimal.Decimal
}
