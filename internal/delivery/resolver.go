package delivery

import (
	"context"
	"fmt"

	"orderdesk-be/internal/address"
	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/business"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Quote is the resolved delivery fee. DistanceKm and ZoneID are set only
// when the fee came from a geometric computation.
type Quote struct {
	Fee        decimal.Decimal
	DistanceKm *float64
	ZoneID     *uuid.UUID
}

type Resolver interface {
	Resolve(ctx context.Context, b *business.Business, dest *address.Address, explicitFee *decimal.Decimal) (Quote, error)
}

type resolver struct{}

func NewResolver() Resolver {
	return &resolver{}
}

// Resolve picks the fee for a delivery order. The base fee is the explicit
// fee, else the business default, else zero. With coordinates on both ends
// the first active zone covering the distance overrides it; no zone and a
// distance past the delivery radius is a conflict.
func (r *resolver) Resolve(
	ctx context.Context,
	b *business.Business,
	dest *address.Address,
	explicitFee *decimal.Decimal,
) (Quote, error) {
	q := Quote{Fee: decimal.Zero}
	switch {
	case explicitFee != nil:
		q.Fee = *explicitFee
	case b.DefaultDeliveryFee != nil:
		q.Fee = *b.DefaultDeliveryFee
	}

	if !dest.HasCoordinates() || !b.HasCoordinates() {
		return q, nil
	}

	distance := Haversine(*b.Lat, *b.Lon, *dest.Lat, *dest.Lon)
	q.DistanceKm = &distance

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "delivery"),
		zap.String("method", "Resolve"),
		zap.String("business_id", b.ID.String()),
		zap.Float64("distance_km", distance),
	)

	for _, z := range b.ActiveZones() {
		if z.MaxDistanceKm >= distance {
			zoneID := z.ID
			q.Fee = z.Fee
			q.ZoneID = &zoneID
			log.Debug("delivery zone matched", zap.String("zone_id", z.ID.String()))
			return q, nil
		}
	}

	if b.DeliveryRadiusKm != nil && distance > *b.DeliveryRadiusKm {
		log.Info("delivery address outside radius", zap.Float64("radius_km", *b.DeliveryRadiusKm))
		return Quote{}, apperror.Conflict(
			fmt.Sprintf("outside delivery radius (%.2f km > %.2f km)", distance, *b.DeliveryRadiusKm),
		).Wrap(ErrOutsideDeliveryRadius)
	}

	return q, nil
}
