package transport

import (
	"time"

	"orderdesk-be/internal/address"
	"orderdesk-be/internal/order"
	"orderdesk-be/internal/product"

	"github.com/google/uuid"
)

type CustomerSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone,omitempty"`
	Email *string   `json:"email,omitempty"`
}

// OrderSummary is returned when an order is created and in lists.
type OrderSummary struct {
	ID          uuid.UUID        `json:"id"`
	OrderNumber string           `json:"orderNumber"`
	Status      order.Status     `json:"status"`
	Type        order.Type       `json:"type"`
	Total       string           `json:"total"`
	Customer    CustomerSnapshot `json:"customer"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type OrderItemView struct {
	ID            uuid.UUID   `json:"id"`
	ProductID     uuid.UUID   `json:"productId"`
	VariantID     *uuid.UUID  `json:"variantId,omitempty"`
	Name          string      `json:"name"`
	Quantity      int         `json:"quantity"`
	UnitPrice     string      `json:"unitPrice"`
	OriginalPrice *string     `json:"originalPrice,omitempty"`
	ModifierIDs   []uuid.UUID `json:"modifierIds"`
	LineTotal     string      `json:"lineTotal"`
}

type OrderDetail struct {
	OrderSummary
	PaymentStatus      order.PaymentStatus `json:"paymentStatus"`
	PaymentMethod      string              `json:"paymentMethod,omitempty"`
	Subtotal           string              `json:"subtotal"`
	DeliveryFee        string              `json:"deliveryFee"`
	DeliveryAddress    *address.Address    `json:"deliveryAddress,omitempty"`
	DeliveryDistanceKm *float64            `json:"deliveryDistanceKm,omitempty"`
	ScheduledAt        *time.Time          `json:"scheduledAt,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	CreatedBy          string              `json:"createdBy"`
	Items              []OrderItemView     `json:"items"`
}

func toSummary(o *order.Order) OrderSummary {
	return OrderSummary{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Type:        o.Type,
		Total:       o.Total.StringFixed(2),
		Customer: CustomerSnapshot{
			ID:    o.CustomerID,
			Name:  o.CustomerName,
			Phone: o.CustomerPhone,
			Email: o.CustomerEmail,
		},
		CreatedAt: o.CreatedAt,
	}
}

func toDetail(o *order.Order) OrderDetail {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		view := OrderItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			Name:        it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			ModifierIDs: it.ModifierIDs,
			LineTotal:   it.LineTotal.StringFixed(2),
		}
		if view.ModifierIDs == nil {
			view.ModifierIDs = []uuid.UUID{}
		}
		if it.OriginalPrice != nil {
			s := it.OriginalPrice.StringFixed(2)
			view.OriginalPrice = &s
		}
		items = append(items, view)
	}

	return OrderDetail{
		OrderSummary:       toSummary(o),
		PaymentStatus:      o.PaymentStatus,
		PaymentMethod:      o.PaymentMethod,
		Subtotal:           o.Subtotal.StringFixed(2),
		DeliveryFee:        o.DeliveryFee.StringFixed(2),
		DeliveryAddress:    o.DeliveryAddress,
		DeliveryDistanceKm: o.DeliveryDistanceKm,
		ScheduledAt:        o.ScheduledAt,
		Notes:              o.Notes,
		CreatedBy:          o.CreatedBy,
		Items:              items,
	}
}

type ModifierView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceDelta string    `json:"priceDelta"`
}

// ProductView is a catalog entry as shown to staff building an order.
type ProductView struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Price          string         `json:"price"`
	OriginalPrice  *string        `json:"originalPrice,omitempty"`
	Stock          int            `json:"stock"`
	TrackInventory bool           `json:"trackInventory"`
	Status         product.Status `json:"status"`
	Modifiers      []ModifierView `json:"modifiers"`
}

func toProductView(p *product.Product) ProductView {
	view := ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price.StringFixed(2),
		Stock:          p.Stock,
		TrackInventory: p.TrackInventory,
		Status:         p.Status,
		Modifiers:      make([]ModifierView, 0, len(p.Modifiers)),
	}
	if p.OriginalPrice != nil {
		s := p.OriginalPrice.StringFixed(2)
		view.OriginalPrice = &s
	}
	for _, m := range p.Modifiers {
		view.Modifiers = append(view.Modifiers, ModifierView{
			ID:         m.ID,
			Name:       m.Name,
			PriceDelta: m.PriceDelta.StringFixed(2),
		})
	}
	return view
}
