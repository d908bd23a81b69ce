package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"orderdesk-be/internal/business"
	"orderdesk-be/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, msg Message, cfg business.NotificationConfig) error
}

// Publisher is the part of *amqp091.Channel the sender needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender publishes alerts to a topic exchange with routing key
// "order.created.<channel>" so channel workers can bind per channel.
type AMQPSender struct {
	pub      Publisher
	exchange string
}

func NewAMQPSender(pub Publisher, exchange string) *AMQPSender {
	return &AMQPSender{pub: pub, exchange: exchange}
}

func RoutingKey(channel business.NotificationChannel) string {
	return "order.created." + strings.ToLower(string(channel))
}

func (s *AMQPSender) Send(ctx context.Context, msg Message, cfg business.NotificationConfig) error {
	if !deliverable(cfg) {
		return nil
	}

	msg.Channel = string(cfg.Channel)
	msg.Target = cfg.Target
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := RoutingKey(cfg.Channel)
	err = s.pub.PublishWithContext(ctx, s.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.OrderID.String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	logger.FromCtx(ctx).Debug("notification published",
		zap.String("exchange", s.exchange),
		zap.String("routing_key", key),
		zap.Int("message_size", len(body)),
	)
	return nil
}

// LogSender writes alerts to the log. It is used when no broker is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message, cfg business.NotificationConfig) error {
	if !deliverable(cfg) {
		return nil
	}
	logger.FromCtx(ctx).Info("order notification",
		zap.String("channel", string(cfg.Channel)),
		zap.String("target", cfg.Target),
		zap.String("order_number", msg.OrderNumber),
		zap.String("total", msg.Total),
	)
	return nil
}
