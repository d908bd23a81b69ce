package order

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query selects orders of one business. Only the types in this package
// implement it.
type Query interface {
	build() (where string, args []any, page string)
}

type ByID struct {
	BusinessID uuid.UUID
	OrderID    uuid.UUID
}

type ByStoreAndStatus struct {
	BusinessID uuid.UUID
	Status     Status // empty matches every status
	Limit      int
	Offset     int
}

// BySearchTerm matches the order number or the customer name snapshot.
type BySearchTerm struct {
	BusinessID uuid.UUID
	Term       string
	Limit      int
	Offset     int
}

func (q ByID) build() (string, []any, string) {
	return "o.business_id = $1 AND o.id = $2", []any{q.BusinessID, q.OrderID}, ""
}

func (q ByStoreAndStatus) build() (string, []any, string) {
	where := "o.business_id = $1"
	args := []any{q.BusinessID}
	if q.Status != "" {
		args = append(args, q.Status)
		where += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	return where, args, pageClause(&args, q.Limit, q.Offset)
}

func (q BySearchTerm) build() (string, []any, string) {
	args := []any{q.BusinessID, "%" + strings.TrimSpace(q.Term) + "%"}
	where := "o.business_id = $1 AND (o.order_number ILIKE $2 OR o.customer_name ILIKE $2)"
	return where, args, pageClause(&args, q.Limit, q.Offset)
}

// Offset converts a 1-based page into a row offset.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return (page - 1) * limit
}

func pageClause(args *[]any, limit, offset int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	*args = append(*args, limit, offset)
	n := len(*args)
	return fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d", n-1, n)
}
