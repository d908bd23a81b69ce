package order

import (
	"context"
	"fmt"
	"strings"

	"orderdesk-be/internal/db"
	"orderdesk-be/internal/utils"

	"github.com/google/uuid"
)

// Sequencer hands out the next order sequence value of a business. It must
// run inside the order transaction so a rolled back order releases nothing
// but a gap.
type Sequencer interface {
	Next(ctx context.Context, businessID uuid.UUID) (int64, error)
}

type sequencer struct {
	db db.DBTX
}

func NewSequencer(conn db.DBTX) Sequencer {
	return &sequencer{db: conn}
}

func (s *sequencer) Next(ctx context.Context, businessID uuid.UUID) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO order_sequences (business_id, last_value)
		VALUES ($1, 1)
		ON CONFLICT (business_id)
		DO UPDATE SET last_value = order_sequences.last_value + 1
		RETURNING last_value
	`, businessID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	return next, nil
}

// NumberFor renders seq with the business template, falling back to
// fallback when the business has none.
func NumberFor(template, fallback string, seq int64) string {
	if strings.TrimSpace(template) == "" {
		template = fallback
	}
	return utils.FormatOrderNumber(template, seq)
}
