package notification

import (
	"time"

	"orderdesk-be/internal/business"

	"github.com/google/uuid"
)

// Message is the new-order alert body published to the business's channel.
type Message struct {
	OrderID       uuid.UUID  `json:"orderId"`
	OrderNumber   string     `json:"orderNumber"`
	BusinessID    uuid.UUID  `json:"businessId"`
	OrderType     string     `json:"orderType"`
	CustomerName  string     `json:"customerName"`
	CustomerPhone string     `json:"customerPhone,omitempty"`
	Total         string     `json:"total"`
	ItemCount     int        `json:"itemCount"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	Channel       string     `json:"channel"`
	Target        string     `json:"target"`
}

// Request is the dispatch payload: the message plus where to send it.
type Request struct {
	Message Message
	Config  business.NotificationConfig
}

// deliverable reports whether cfg asks for a notification at all.
func deliverable(cfg business.NotificationConfig) bool {
	return cfg.Enabled && cfg.Channel != "" && cfg.Channel != business.ChannelNone
}
