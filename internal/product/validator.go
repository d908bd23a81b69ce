package product

import (
	"context"
	"errors"
	"fmt"

	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Validator checks requested lines against the catalog and prices them.
type Validator interface {
	Validate(ctx context.Context, businessID uuid.UUID, lines []LineRequest) (*Pricing, error)
}

type validator struct {
	repo Repository
}

func NewValidator(repo Repository) Validator {
	return &validator{repo: repo}
}

// Validate resolves every line to an active product of the business (and
// variant when given), checks stock for tracked products and computes unit
// prices including modifier deltas. Unknown modifier ids are ignored.
func (v *validator) Validate(ctx context.Context, businessID uuid.UUID, lines []LineRequest) (*Pricing, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "product"),
		zap.String("method", "Validate"),
		zap.String("business_id", businessID.String()),
		zap.Int("line_count", len(lines)),
	)

	if len(lines) == 0 {
		return nil, apperror.ValidationField("items", "order must contain at least one item")
	}

	pricing := &Pricing{
		Lines:    make([]PricedLine, 0, len(lines)),
		Subtotal: decimal.Zero,
	}
	cache := make(map[uuid.UUID]*Product, len(lines))

	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, apperror.ValidationField(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1")
		}

		p, err := v.product(ctx, cache, businessID, line.ProductID)
		if err != nil {
			return nil, err
		}

		base, original, stock := p.Price, p.OriginalPrice, p.Stock
		if line.VariantID != nil {
			variant, err := v.repo.GetVariant(ctx, p.ID, *line.VariantID)
			if errors.Is(err, ErrVariantNotFound) {
				return nil, apperror.NotFound("variant", line.VariantID.String()).Wrap(err)
			}
			if err != nil {
				return nil, apperror.Internal(err)
			}
			base, original, stock = variant.Price, variant.OriginalPrice, variant.Stock
		}

		if p.TrackInventory && line.Quantity > stock {
			log.Info("insufficient stock",
				zap.String("product_id", p.ID.String()),
				zap.Int("requested", line.Quantity),
				zap.Int("available", stock),
			)
			return nil, apperror.Conflict(
				fmt.Sprintf("insufficient stock for %s: requested %d, available %d", p.Name, line.Quantity, stock),
			).Wrap(ErrInsufficientStock)
		}

		delta, matched := matchModifiers(p.Modifiers, line.ModifierIDs)
		unit := base.Add(delta)

		priced := PricedLine{
			ProductID:      p.ID,
			VariantID:      line.VariantID,
			Name:           p.Name,
			Quantity:       line.Quantity,
			UnitPrice:      unit,
			ModifierIDs:    matched,
			LineTotal:      unit.Mul(decimal.NewFromInt(int64(line.Quantity))),
			TrackInventory: p.TrackInventory,
		}
		if original != nil && original.GreaterThan(base) {
			o := original.Add(delta)
			priced.OriginalPrice = &o
		}

		pricing.Lines = append(pricing.Lines, priced)
		pricing.Subtotal = pricing.Subtotal.Add(priced.LineTotal)
	}

	log.Debug("lines priced", zap.String("subtotal", pricing.Subtotal.StringFixed(2)))
	return pricing, nil
}

func (v *validator) product(ctx context.Context, cache map[uuid.UUID]*Product, businessID, id uuid.UUID) (*Product, error) {
	if p, ok := cache[id]; ok {
		return p, nil
	}
	found, err := v.repo.Find(ctx, ByID{BusinessID: businessID, ProductID: id, ActiveOnly: true})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(found) == 0 {
		return nil, apperror.NotFound("product", id.String()).Wrap(ErrProductNotFound)
	}
	cache[id] = found[0]
	return found[0], nil
}

// matchModifiers sums the deltas of requested modifiers the product offers
// and returns the ids that matched, in request order.
func matchModifiers(available []Modifier, requested []uuid.UUID) (decimal.Decimal, []uuid.UUID) {
	delta := decimal.Zero
	if len(requested) == 0 {
		return delta, nil
	}

	offered := make(map[uuid.UUID]decimal.Decimal, len(available))
	for _, m := range available {
		offered[m.ID] = m.PriceDelta
	}

	matched := make([]uuid.UUID, 0, len(requested))
	for _, id := range requested {
		if d, ok := offered[id]; ok {
			delta = delta.Add(d)
			matched = append(matched, id)
		}
	}
	return delta, matched
}
