package notification

import (
	"context"
	"fmt"

	"orderdesk-be/internal/dispatch"
)

const HandlerName = "notification"

// NewHandler adapts a Sender to the dispatcher. The event payload must be a
// Request.
func NewHandler(sender Sender) dispatch.Handler {
	return dispatch.HandlerFunc(func(ctx context.Context, e dispatch.Event) error {
		req, ok := e.Payload.(Request)
		if !ok {
			return fmt.Errorf("notification: unexpected payload %T", e.Payload)
		}
		return sender.Send(ctx, req.Message, req.Config)
	})
}
