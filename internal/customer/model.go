package customer

import (
	"strings"
	"time"

	"orderdesk-be/internal/address"

	"github.com/google/uuid"
)

type Tier string

const (
	TierRegular   Tier = "REGULAR"
	TierVIP       Tier = "VIP"
	TierWholesale Tier = "WHOLESALE"
)

func ParseTier(s string) (Tier, bool) {
	switch t := Tier(strings.ToUpper(strings.TrimSpace(s))); t {
	case "":
		return TierRegular, true
	case TierRegular, TierVIP, TierWholesale:
		return t, true
	default:
		return "", false
	}
}

type Customer struct {
	ID             uuid.UUID
	BusinessID     uuid.UUID
	Name           string
	Phone          string
	CanonicalPhone string
	Email          *string
	Tier           Tier
	Address        *address.Address
	AddressLine    string
	AddedByAdmin   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewCustomer is the inline customer payload of an order.
type NewCustomer struct {
	Name    string           `json:"name" validate:"required"`
	Phone   string           `json:"phone" validate:"required"`
	Email   string           `json:"email,omitempty" validate:"omitempty,email"`
	Tier    string           `json:"tier,omitempty"`
	Address *address.Address `json:"address,omitempty"`
}

// Reference points at the customer of an order: an existing id or a new
// payload, never both.
type Reference struct {
	CustomerID *uuid.UUID
	New        *NewCustomer
}

// Resolution is the customer chosen for an order plus the snapshot values
// the order keeps. Name is the name submitted with this order when one was
// given, not necessarily the stored one.
type Resolution struct {
	CustomerID uuid.UUID
	Name       string
	Phone      string
	Email      *string
	Created    bool
}
