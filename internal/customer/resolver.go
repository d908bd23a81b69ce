package customer

import (
	"context"
	"errors"
	"strings"

	"orderdesk-be/internal/address"
	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/logger"
	"orderdesk-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resolver maps an order's customer reference onto exactly one stored
// customer of the business.
type Resolver interface {
	Resolve(ctx context.Context, businessID uuid.UUID, ref Reference, fallback *address.Address) (*Resolution, error)
}

type resolver struct {
	repo        Repository
	normalizer  *address.Normalizer
	phoneRegion string
	newID       func() uuid.UUID
}

type ResolverOption func(*resolver)

// WithPhoneRegion sets the region used to read phone numbers written
// without a country code.
func WithPhoneRegion(region string) ResolverOption {
	return func(r *resolver) {
		if region != "" {
			r.phoneRegion = region
		}
	}
}

func NewResolver(repo Repository, normalizer *address.Normalizer, opts ...ResolverOption) Resolver {
	if normalizer == nil {
		normalizer = address.NewNormalizer("")
	}
	r := &resolver{
		repo:        repo,
		normalizer:  normalizer,
		phoneRegion: utils.DefaultPhoneRegion,
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the customer for an order. A new-customer payload whose
// phone matches an existing customer reuses that record and updates its
// name and email with the submitted values; the phone is never changed.
// fallback is used as the address of a newly created customer when the
// payload carries none.
func (r *resolver) Resolve(
	ctx context.Context,
	businessID uuid.UUID,
	ref Reference,
	fallback *address.Address,
) (*Resolution, error) {
	if (ref.CustomerID == nil) == (ref.New == nil) {
		return nil, apperror.ValidationField("customerId", ErrAmbiguousCustomer.Error()).Wrap(ErrAmbiguousCustomer)
	}

	if ref.CustomerID != nil {
		return r.resolveExisting(ctx, businessID, *ref.CustomerID)
	}
	return r.resolveNew(ctx, businessID, ref.New, fallback)
}

func (r *resolver) resolveExisting(ctx context.Context, businessID, id uuid.UUID) (*Resolution, error) {
	c, err := r.repo.GetByID(ctx, businessID, id)
	if errors.Is(err, ErrCustomerNotFound) {
		return nil, apperror.NotFound("customer", id.String()).Wrap(err)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &Resolution{
		CustomerID: c.ID,
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
	}, nil
}

func (r *resolver) resolveNew(
	ctx context.Context,
	businessID uuid.UUID,
	in *NewCustomer,
	fallback *address.Address,
) (*Resolution, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "customer"),
		zap.String("method", "Resolve"),
		zap.String("business_id", businessID.String()),
	)

	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" {
		return nil, apperror.ValidationField("newCustomer.name", "customer name is required")
	}
	if phone == "" {
		return nil, apperror.ValidationField("newCustomer.phone", "customer phone is required")
	}
	canonical, err := utils.CanonicalPhone(phone, r.phoneRegion)
	if err != nil {
		return nil, apperror.ValidationField("newCustomer.phone", err.Error()).Wrap(err)
	}
	tier, ok := ParseTier(in.Tier)
	if !ok {
		return nil, apperror.ValidationField("newCustomer.tier", "unknown customer tier "+in.Tier)
	}
	email := utils.NilIfBlank(in.Email)

	existing, err := r.repo.FindByPhone(ctx, businessID, canonical)
	switch {
	case err == nil:
		return r.merge(ctx, existing, name, email)
	case !errors.Is(err, ErrCustomerNotFound):
		return nil, apperror.Internal(err)
	}

	addr := in.Address
	if addr == nil {
		addr = fallback
	}
	c := &Customer{
		ID:             r.newID(),
		BusinessID:     businessID,
		Name:           name,
		Phone:          phone,
		CanonicalPhone: canonical,
		Email:          email,
		Tier:           tier,
		AddedByAdmin:   true,
	}
	if addr != nil {
		normalized := r.normalizer.Normalize(*addr)
		c.Address = &normalized
		c.AddressLine = normalized.Flatten()
	}

	created, err := r.repo.Create(ctx, c)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if created {
		log.Info("customer created", zap.String("customer_id", c.ID.String()))
		return &Resolution{
			CustomerID: c.ID,
			Name:       name,
			Phone:      c.Phone,
			Email:      email,
			Created:    true,
		}, nil
	}

	// A concurrent order registered the same phone first.
	log.Info("customer phone claimed concurrently, merging")
	existing, err = r.repo.FindByPhone(ctx, businessID, canonical)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return r.merge(ctx, existing, name, email)
}

func (r *resolver) merge(ctx context.Context, c *Customer, name string, email *string) (*Resolution, error) {
	nameChanged := name != c.Name
	emailChanged := email != nil && (c.Email == nil || *email != *c.Email)

	if nameChanged || emailChanged {
		var newEmail *string
		if emailChanged {
			newEmail = email
		}
		if err := r.repo.UpdateContact(ctx, c.BusinessID, c.ID, name, newEmail); err != nil {
			return nil, apperror.Internal(err)
		}
		logger.FromCtx(ctx).Debug("customer contact updated",
			zap.String("customer_id", c.ID.String()),
			zap.Bool("name_changed", nameChanged),
			zap.Bool("email_changed", emailChanged),
		)
	}

	res := &Resolution{
		CustomerID: c.ID,
		Name:       name,
		Phone:      c.Phone,
		Email:      c.Email,
	}
	if email != nil {
		res.Email = email
	}
	return res, nil
}
