package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"orderdesk-be/internal/address"
	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/business"
	"orderdesk-be/internal/customer"
	"orderdesk-be/internal/delivery"
	"orderdesk-be/internal/dispatch"
	"orderdesk-be/internal/inventory"
	"orderdesk-be/internal/logger"
	"orderdesk-be/internal/metrics"
	"orderdesk-be/internal/notification"
	"orderdesk-be/internal/product"
	"orderdesk-be/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	TopicOrderCreated = "order.created"
	EventOrderCreated = "ORDER_CREATED"

	DefaultTemplate = "WO-{number}"
)

// Dispatcher accepts post-commit side effects without blocking.
type Dispatcher interface {
	Enqueue(ctx context.Context, e dispatch.Event) bool
}

type Service interface {
	CreateOrder(ctx context.Context, businessID uuid.UUID, actorID string, req Request) (*Order, error)
	GetOrder(ctx context.Context, businessID, orderID uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, q Query) ([]*Order, error)
}

type service struct {
	businesses      business.Repository
	orders          Repository
	uow             UnitOfWork
	dispatcher      Dispatcher
	pricing         delivery.Resolver
	normalizer      *address.Normalizer
	defaultTemplate string
	phoneRegion     string
	now             func() time.Time
	newID           func() uuid.UUID
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *service) { s.newID = newID }
}

func WithDefaultTemplate(template string) Option {
	return func(s *service) {
		if strings.TrimSpace(template) != "" {
			s.defaultTemplate = template
		}
	}
}

func WithNormalizer(n *address.Normalizer) Option {
	return func(s *service) { s.normalizer = n }
}

// WithPhoneRegion sets the region for customer phones when the business has
// none configured.
func WithPhoneRegion(region string) Option {
	return func(s *service) {
		if strings.TrimSpace(region) != "" {
			s.phoneRegion = region
		}
	}
}

func WithDeliveryResolver(r delivery.Resolver) Option {
	return func(s *service) { s.pricing = r }
}

func NewService(
	businesses business.Repository,
	orders Repository,
	uow UnitOfWork,
	dispatcher Dispatcher,
	opts ...Option,
) Service {
	s := &service{
		businesses:      businesses,
		orders:          orders,
		uow:             uow,
		dispatcher:      dispatcher,
		pricing:         delivery.NewResolver(),
		normalizer:      address.NewNormalizer(""),
		defaultTemplate: DefaultTemplate,
		phoneRegion:     utils.DefaultPhoneRegion,
		now:             time.Now,
		newID:           uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder validates, prices and persists an order in one transaction,
// then hands the notification and audit side effects to the dispatcher.
func (s *service) CreateOrder(
	ctx context.Context,
	businessID uuid.UUID,
	actorID string,
	req Request,
) (o *Order, err error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("business_id", businessID.String()),
		zap.String("actor_id", actorID),
	)

	timer := metrics.StartTimer()
	defer func() {
		timer.ObserveSeconds(metrics.OrderCreateDuration)
		if err != nil {
			kind := apperror.KindOf(err)
			metrics.OrderCreateFailures.WithLabelValues(string(kind)).Inc()
			if kind == apperror.KindInternal {
				log.Error("order creation failed", zap.Error(err))
			} else {
				log.Info("order rejected", zap.String("kind", string(kind)), zap.Error(err))
			}
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	biz, err := s.businesses.GetByID(ctx, businessID)
	if errors.Is(err, business.ErrBusinessNotFound) {
		return nil, apperror.NotFound("business", businessID.String()).Wrap(err)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	var (
		deliveryAddr *address.Address
		quote        = delivery.Quote{Fee: decimal.Zero}
	)
	if req.OrderType == TypeDelivery {
		normalized := s.normalizer.Normalize(*req.DeliveryAddress)
		deliveryAddr = &normalized
		quote, err = s.pricing.Resolve(ctx, biz, deliveryAddr, req.DeliveryFee)
		if err != nil {
			return nil, apperror.From(err)
		}
	}

	order := &Order{
		ID:                 s.newID(),
		BusinessID:         businessID,
		Status:             StatusPending,
		Type:               req.OrderType,
		DeliveryFee:        quote.Fee,
		DeliveryAddress:    deliveryAddr,
		DeliveryDistanceKm: quote.DistanceKm,
		ScheduledAt:        req.ScheduledAt,
		Notes:              strings.TrimSpace(req.Notes),
		PaymentMethod:      strings.TrimSpace(req.PaymentMethod),
		PaymentStatus:      PaymentPending,
		CreatedBy:          actorID,
	}

	err = s.uow.Within(ctx, func(ctx context.Context, st Stores) error {
		return s.assemble(ctx, st, biz, req, order)
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	metrics.OrdersCreated.WithLabelValues(string(order.Type)).Inc()
	log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.StringFixed(2)),
	)

	s.dispatchCreated(ctx, biz, order)
	return order, nil
}

// assemble runs every mutating step of order creation. It is called inside
// the unit of work.
func (s *service) assemble(ctx context.Context, st Stores, biz *business.Business, req Request, order *Order) error {
	region := biz.PhoneRegion
	if region == "" {
		region = s.phoneRegion
	}
	res, err := customer.NewResolver(st.Customers, s.normalizer, customer.WithPhoneRegion(region)).
		Resolve(ctx, biz.ID, req.CustomerReference(), order.DeliveryAddress)
	if err != nil {
		return err
	}
	order.CustomerID = res.CustomerID
	order.CustomerName = res.Name
	order.CustomerPhone = res.Phone
	order.CustomerEmail = res.Email

	pricing, err := product.NewValidator(st.Catalog).Validate(ctx, biz.ID, req.Items)
	if err != nil {
		return err
	}
	order.Subtotal = pricing.Subtotal
	order.Total = pricing.Subtotal.Add(order.DeliveryFee)

	seq, err := st.Sequences.Next(ctx, biz.ID)
	if err != nil {
		return apperror.Internal(err)
	}
	order.OrderNumber = NumberFor(biz.OrderNumberTemplate, s.defaultTemplate, seq)

	order.Items = make([]Item, 0, len(pricing.Lines))
	var stockLines []inventory.Line
	for _, line := range pricing.Lines {
		order.Items = append(order.Items, Item{
			ID:            s.newID(),
			ProductID:     line.ProductID,
			VariantID:     line.VariantID,
			Name:          line.Name,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			OriginalPrice: line.OriginalPrice,
			ModifierIDs:   line.ModifierIDs,
			LineTotal:     line.LineTotal,
		})
		if line.TrackInventory {
			stockLines = append(stockLines, inventory.Line{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
			})
		}
	}

	if err := st.Orders.Create(ctx, order); err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			return apperror.Conflict(ErrDuplicateNumber.Error()).Wrap(err)
		}
		return apperror.Internal(err)
	}

	if len(stockLines) == 0 {
		return nil
	}
	ledger := inventory.NewLedger(st.Inventory, func(inventory.Line) {
		metrics.InventoryDecrements.Inc()
	})
	_, err = ledger.Apply(ctx, inventory.Sale{
		BusinessID:  biz.ID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ActorID:     order.CreatedBy,
		Lines:       stockLines,
	})
	return err
}

// dispatchCreated enqueues the post-commit side effects. A dropped event
// is logged by the dispatcher and never affects the caller.
func (s *service) dispatchCreated(ctx context.Context, biz *business.Business, o *Order) {
	if s.dispatcher == nil {
		return
	}

	itemCount := 0
	for _, it := range o.Items {
		itemCount += it.Quantity
	}

	s.dispatcher.Enqueue(ctx, dispatch.Event{
		Topic:      TopicOrderCreated,
		Type:       EventOrderCreated,
		Severity:   dispatch.SeverityInfo,
		BusinessID: o.BusinessID,
		Metadata: map[string]any{
			"order_id":     o.ID.String(),
			"order_number": o.OrderNumber,
			"total":        o.Total.StringFixed(2),
			"customer_id":  o.CustomerID.String(),
			"actor_id":     o.CreatedBy,
			"item_count":   itemCount,
		},
		Payload: notification.Request{
			Message: notification.Message{
				OrderID:       o.ID,
				OrderNumber:   o.OrderNumber,
				BusinessID:    o.BusinessID,
				OrderType:     string(o.Type),
				CustomerName:  o.CustomerName,
				CustomerPhone: o.CustomerPhone,
				Total:         o.Total.StringFixed(2),
				ItemCount:     itemCount,
				ScheduledAt:   o.ScheduledAt,
				CreatedAt:     o.CreatedAt,
				Channel:       string(biz.Notification.Channel),
				Target:        biz.Notification.Target,
			},
			Config: biz.Notification,
		},
		FailureKind: FailureKind,
		OccurredAt:  s.now(),
	})
}

func (s *service) GetOrder(ctx context.Context, businessID, orderID uuid.UUID) (*Order, error) {
	o, err := s.orders.GetByID(ctx, businessID, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, apperror.NotFound("order", orderID.String()).Wrap(err)
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get order",
			zap.String("layer", "service"),
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil, apperror.Internal(err)
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, q Query) ([]*Order, error) {
	orders, err := s.orders.Find(ctx, q)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list orders",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return nil, apperror.Internal(err)
	}
	if orders == nil {
		orders = []*Order{}
	}
	return orders, nil
}
