package order

import (
	"time"

	"orderdesk-be/internal/address"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeDelivery Type = "DELIVERY"
	TypePickup   Type = "PICKUP"
	TypeDineIn   Type = "DINE_IN"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusAccepted, StatusPreparing, StatusReady, StatusCompleted, StatusCanceled:
		return st, true
	default:
		return "", false
	}
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Order is the persisted aggregate. CustomerName and item prices are
// snapshots taken at creation time.
type Order struct {
	ID                 uuid.UUID
	BusinessID         uuid.UUID
	OrderNumber        string
	Status             Status
	Type               Type
	CustomerID         uuid.UUID
	CustomerName       string
	CustomerPhone      string
	CustomerEmail      *string
	Subtotal           decimal.Decimal
	DeliveryFee        decimal.Decimal
	Total              decimal.Decimal
	DeliveryAddress    *address.Address
	DeliveryDistanceKm *float64
	ScheduledAt        *time.Time
	Notes              string
	PaymentMethod      string
	PaymentStatus      PaymentStatus
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Items              []Item
}

type Item struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
	OriginalPrice *decimal.Decimal
	ModifierIDs   []uuid.UUID
	LineTotal     decimal.Decimal
	Position      int
}
