package customer

import "errors"

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrAmbiguousCustomer = errors.New("exactly one of customerId or newCustomer is required")
)
