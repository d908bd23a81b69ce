package business

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "EMAIL"
	ChannelWhatsApp NotificationChannel = "WHATSAPP"
	ChannelNone     NotificationChannel = "NONE"
)

// NotificationConfig holds where a business wants new-order alerts sent.
type NotificationConfig struct {
	Enabled bool                `json:"enabled"`
	Channel NotificationChannel `json:"channel"`
	Target  string              `json:"target"`
}

type DeliveryZone struct {
	ID            uuid.UUID
	Name          string
	Active        bool
	MaxDistanceKm float64
	Fee           decimal.Decimal
	Position      int
}

// Business is the store configuration the order core reads. Zones are kept
// in authored position order.
type Business struct {
	ID                  uuid.UUID
	Name                string
	Lat                 *float64
	Lon                 *float64
	DefaultDeliveryFee  *decimal.Decimal
	DeliveryRadiusKm    *float64
	OrderNumberTemplate string
	// PhoneRegion is the ISO 3166 code used for customer phones written
	// without a country code. Empty means the service default.
	PhoneRegion  string
	Notification NotificationConfig
	Zones        []DeliveryZone
}

func (b *Business) HasCoordinates() bool {
	return b != nil && b.Lat != nil && b.Lon != nil
}

// ActiveZones returns the active zones, preserving order.
func (b *Business) ActiveZones() []DeliveryZone {
	active := make([]DeliveryZone, 0, len(b.Zones))
	for _, z := range b.Zones {
		if z.Active {
			active = append(active, z)
		}
	}
	return active
}
