package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orderdesk-be/internal/db"
	"orderdesk-be/internal/dispatch"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HandlerName = "audit"

// Entry is one row of the system log.
type Entry struct {
	ID         uuid.UUID
	Type       string
	Severity   dispatch.Severity
	BusinessID uuid.UUID
	Metadata   map[string]any
	CreatedAt  time.Time
}

type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// PostgresSink appends entries to system_logs.
type PostgresSink struct {
	db db.DBTX
}

func NewPostgresSink(conn db.DBTX) *PostgresSink {
	return &PostgresSink{db: conn}
}

func (s *PostgresSink) Record(ctx context.Context, e Entry) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO system_logs (id, type, severity, business_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.Type, e.Severity, e.BusinessID, metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert system log: %w", err)
	}
	return nil
}

// LogSink writes entries through the process logger.
type LogSink struct{}

func (LogSink) Record(ctx context.Context, e Entry) error {
	logger.FromCtx(ctx).Info("audit event",
		zap.String("type", e.Type),
		zap.String("severity", string(e.Severity)),
		zap.String("business_id", e.BusinessID.String()),
		zap.Any("metadata", e.Metadata),
	)
	return nil
}

// Sink kinds accepted by NewSink.
const (
	SinkPostgres = "postgres"
	SinkLog      = "log"
)

// NewSink returns the sink named by kind. conn is only used by the
// postgres sink.
func NewSink(kind string, conn db.DBTX) (Sink, error) {
	switch kind {
	case SinkPostgres, "":
		if conn == nil {
			return nil, fmt.Errorf("audit: %s sink needs a database", SinkPostgres)
		}
		return NewPostgresSink(conn), nil
	case SinkLog:
		return LogSink{}, nil
	default:
		return nil, fmt.Errorf("audit: unknown sink %q", kind)
	}
}

// NewHandler records every dispatched event as an audit entry built from its
// type, severity and metadata.
func NewHandler(sink Sink) dispatch.Handler {
	return dispatch.HandlerFunc(func(ctx context.Context, e dispatch.Event) error {
		entry := Entry{
			ID:         e.ID,
			Type:       e.Type,
			Severity:   e.Severity,
			BusinessID: e.BusinessID,
			Metadata:   e.Metadata,
			CreatedAt:  e.OccurredAt,
		}
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.Severity == "" {
			entry.Severity = dispatch.SeverityInfo
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now().UTC()
		}
		return sink.Record(ctx, entry)
	})
}
