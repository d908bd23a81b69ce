package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"orderdesk-be/internal/business"
	"orderdesk-be/internal/dispatch"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg Message, cfg business.NotificationConfig) error {
	args := m.Called(ctx, msg, cfg)
	return args.Error(0)
}

func sampleMessage() Message {
	return Message{
		OrderID:      uuid.New(),
		OrderNumber:  "WO-000001",
		BusinessID:   uuid.New(),
		OrderType:    "DELIVERY",
		CustomerName: "Jane",
		Total:        "59.00",
		ItemCount:    2,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestAMQPSender_Send(t *testing.T) {
	ctx := context.Background()
	msg := sampleMessage()

	t.Run("Publishes persistent JSON with channel routing key", func(t *testing.T) {
		pub := new(MockPublisher)
		pub.On("PublishWithContext", ctx, "orderdesk.notifications", "order.created.whatsapp", false, false,
			mock.MatchedBy(func(p amqp.Publishing) bool {
				var decoded Message
				if err := json.Unmarshal(p.Body, &decoded); err != nil {
					return false
				}
				return p.DeliveryMode == amqp.Persistent &&
					p.ContentType == "application/json" &&
					decoded.OrderNumber == "WO-000001" &&
					decoded.Channel == "WHATSAPP" &&
					decoded.Target == "+355691234567"
			})).Return(nil)

		err := NewAMQPSender(pub, "orderdesk.notifications").Send(ctx, msg, business.NotificationConfig{
			Enabled: true, Channel: business.ChannelWhatsApp, Target: "+355691234567",
		})

		require.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("Disabled or NONE is a no-op", func(t *testing.T) {
		pub := new(MockPublisher)
		s := NewAMQPSender(pub, "x")

		assert.NoError(t, s.Send(ctx, msg, business.NotificationConfig{Enabled: false, Channel: business.ChannelEmail}))
		assert.NoError(t, s.Send(ctx, msg, business.NotificationConfig{Enabled: true, Channel: business.ChannelNone}))
		pub.AssertNotCalled(t, "PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Publish error is returned", func(t *testing.T) {
		pub := new(MockPublisher)
		pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, false, false, mock.Anything).
			Return(errors.New("channel closed"))

		err := NewAMQPSender(pub, "x").Send(ctx, msg, business.NotificationConfig{Enabled: true, Channel: business.ChannelEmail})

		assert.ErrorContains(t, err, "failed to publish notification")
	})
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "order.created.email", RoutingKey(business.ChannelEmail))
	assert.Equal(t, "order.created.whatsapp", RoutingKey(business.ChannelWhatsApp))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), sampleMessage(),
		business.NotificationConfig{Enabled: true, Channel: business.ChannelEmail}))
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	msg := sampleMessage()
	cfg := business.NotificationConfig{Enabled: true, Channel: business.ChannelEmail, Target: "owner@example.com"}

	t.Run("Forwards request", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("Send", ctx, msg, cfg).Return(nil)

		err := NewHandler(sender).Handle(ctx, dispatch.Event{Payload: Request{Message: msg, Config: cfg}})

		assert.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("Wrong payload", func(t *testing.T) {
		err := NewHandler(new(MockSender)).Handle(ctx, dispatch.Event{Payload: "nope"})
		assert.Error(t, err)
	})
}
