package inventory

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const ActivityOrderSale ActivityType = "ORDER_SALE"

// Activity is an append-only record of one stock mutation.
type Activity struct {
	ID            uuid.UUID
	BusinessID    uuid.UUID
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Type          ActivityType
	QuantityDelta int
	StockBefore   int
	StockAfter    int
	Reason        string
	ActorID       string
	OrderID       *uuid.UUID
	CreatedAt     time.Time
}

// Line is one stock-bearing order line.
type Line struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// Sale describes the order whose lines the ledger applies.
type Sale struct {
	BusinessID  uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	ActorID     string
	Lines       []Line
}
