package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Event is a side effect to run after the primary operation committed.
// Payload carries the handler-specific body; Metadata is the structured,
// log-friendly summary.
type Event struct {
	ID          uuid.UUID
	Topic       string
	Type        string
	Severity    Severity
	BusinessID  uuid.UUID
	Metadata    map[string]any
	Payload     any
	RequestID   string
	ActorID     string
	FailureKind string
	OccurredAt  time.Time
}

type Handler interface {
	Handle(ctx context.Context, e Event) error
}

type HandlerFunc func(ctx context.Context, e Event) error

func (f HandlerFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}
