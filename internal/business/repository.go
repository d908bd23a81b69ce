package business

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"orderdesk-be/internal/db"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Business, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Business, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Business.GetByID"),
		zap.String("business_id", id.String()),
	)

	var (
		b           Business
		lat, lon    sql.NullFloat64
		radius      sql.NullFloat64
		defaultFee  decimal.NullDecimal
		template    sql.NullString
		region      sql.NullString
		notifyChan  sql.NullString
		notifyTgt   sql.NullString
		notifyOnOff bool
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, lat, lon, default_delivery_fee, delivery_radius_km,
		       order_number_template, phone_region, notify_enabled, notify_channel, notify_target
		FROM businesses
		WHERE id = $1
	`, id).Scan(
		&b.ID, &b.Name, &lat, &lon, &defaultFee, &radius,
		&template, &region, &notifyOnOff, &notifyChan, &notifyTgt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		log.Error("failed to load business", zap.Error(err))
		return nil, fmt.Errorf("load business: %w", err)
	}

	if lat.Valid && lon.Valid {
		b.Lat, b.Lon = &lat.Float64, &lon.Float64
	}
	if radius.Valid {
		b.DeliveryRadiusKm = &radius.Float64
	}
	if defaultFee.Valid {
		b.DefaultDeliveryFee = &defaultFee.Decimal
	}
	b.OrderNumberTemplate = template.String
	b.PhoneRegion = strings.TrimSpace(region.String)
	b.Notification = NotificationConfig{
		Enabled: notifyOnOff,
		Channel: NotificationChannel(notifyChan.String),
		Target:  notifyTgt.String,
	}
	if b.Notification.Channel == "" {
		b.Notification.Channel = ChannelNone
	}

	zones, err := r.listZones(ctx, id)
	if err != nil {
		log.Error("failed to load delivery zones", zap.Error(err))
		return nil, err
	}
	b.Zones = zones

	return &b, nil
}

func (r *repository) listZones(ctx context.Context, businessID uuid.UUID) ([]DeliveryZone, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, active, max_distance_km, fee, position
		FROM delivery_zones
		WHERE business_id = $1
		ORDER BY position ASC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list delivery zones: %w", err)
	}
	defer rows.Close()

	var zones []DeliveryZone
	for rows.Next() {
		var z DeliveryZone
		if err := rows.Scan(&z.ID, &z.Name, &z.Active, &z.MaxDistanceKm, &z.Fee, &z.Position); err != nil {
			return nil, fmt.Errorf("scan delivery zone: %w", err)
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}
