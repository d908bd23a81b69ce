package product

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Query selects products. Only the types in this package implement it.
type Query interface {
	build() (where string, args []any, page string)
}

type ByID struct {
	BusinessID uuid.UUID
	ProductID  uuid.UUID
	ActiveOnly bool
}

type ByStoreAndStatus struct {
	BusinessID uuid.UUID
	Status     Status // empty matches every status
	Limit      int
	Offset     int
}

type BySearchTerm struct {
	BusinessID uuid.UUID
	Term       string
	Limit      int
	Offset     int
}

func (q ByID) build() (string, []any, string) {
	where := "p.business_id = $1 AND p.id = $2"
	if q.ActiveOnly {
		where += fmt.Sprintf(" AND p.status = '%s'", StatusActive)
	}
	return where, []any{q.BusinessID, q.ProductID}, ""
}

func (q ByStoreAndStatus) build() (string, []any, string) {
	where := "p.business_id = $1"
	args := []any{q.BusinessID}
	if q.Status != "" {
		args = append(args, q.Status)
		where += fmt.Sprintf(" AND p.status = $%d", len(args))
	}
	return where, args, pageClause(&args, q.Limit, q.Offset)
}

func (q BySearchTerm) build() (string, []any, string) {
	args := []any{q.BusinessID, "%" + strings.TrimSpace(q.Term) + "%"}
	where := "p.business_id = $1 AND p.name ILIKE $2"
	return where, args, pageClause(&args, q.Limit, q.Offset)
}

func pageClause(args *[]any, limit, offset int) string {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	*args = append(*args, limit, offset)
	n := len(*args)
	return fmt.Sprintf(" ORDER BY p.name ASC LIMIT $%d OFFSET $%d", n-1, n)
}
