package order

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"orderdesk-be/internal/address"
	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/customer"
	"orderdesk-be/internal/product"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request is the inbound order submission.
type Request struct {
	OrderType       Type                  `json:"orderType" validate:"required,oneof=DELIVERY PICKUP DINE_IN"`
	Items           []product.LineRequest `json:"items" validate:"required,min=1,dive"`
	CustomerID      *uuid.UUID            `json:"customerId,omitempty"`
	NewCustomer     *customer.NewCustomer `json:"newCustomer,omitempty"`
	DeliveryAddress *address.Address      `json:"deliveryAddress,omitempty"`
	DeliveryFee     *decimal.Decimal      `json:"deliveryFee,omitempty"`
	ScheduledAt     *time.Time            `json:"scheduledAt,omitempty"`
	Notes           string                `json:"notes,omitempty" validate:"max=2000"`
	PaymentMethod   string                `json:"paymentMethod,omitempty" validate:"max=64"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the shape of the request. It upper-cases the order type
// before checking it, so "pickup" is accepted.
func (r *Request) Validate() error {
	r.OrderType = Type(strings.ToUpper(strings.TrimSpace(string(r.OrderType))))

	if len(r.Items) == 0 {
		return apperror.ValidationField("items", "at least one item is required")
	}

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperror.ValidationField(fieldPath(verrs[0]), msgForTag(verrs[0])).Wrap(err)
		}
		return apperror.Validation("invalid request").Wrap(err)
	}

	if (r.CustomerID == nil) == (r.NewCustomer == nil) {
		return apperror.ValidationField("customerId", "exactly one of customerId or newCustomer is required").
			Wrap(customer.ErrAmbiguousCustomer)
	}

	if r.DeliveryFee != nil && r.DeliveryFee.IsNegative() {
		return apperror.ValidationField("deliveryFee", ErrNegativeFee.Error()).Wrap(ErrNegativeFee)
	}

	if r.OrderType == TypeDelivery {
		if r.DeliveryAddress == nil || strings.TrimSpace(r.DeliveryAddress.Street) == "" {
			return apperror.ValidationField("deliveryAddress", ErrMissingAddress.Error()).Wrap(ErrMissingAddress)
		}
	}

	return nil
}

// CustomerReference returns the customer part of the request.
func (r *Request) CustomerReference() customer.Reference {
	return customer.Reference{CustomerID: r.CustomerID, New: r.NewCustomer}
}

// fieldPath drops the root struct name from the namespace,
// "Request.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s validation", fe.Tag())
	}
}
