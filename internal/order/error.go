package order

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrDuplicateNumber = errors.New("order number already used")
	ErrMissingAddress  = errors.New("delivery orders require a delivery address")
	ErrNegativeFee     = errors.New("delivery fee must not be negative")
)

// PgUniqueViolation is the Postgres unique_violation SQLSTATE.
const PgUniqueViolation = "23505"

// FailureKind tags side-effect failures of order creation in the logs.
const FailureKind = "admin/system order creation error"
