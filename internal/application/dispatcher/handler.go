package dispatcher

import (
	"context"

	"github.com/garyjia/procurement-drafts/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}

// FieldFilter wraps h so it only sees field-changed events for field.
func FieldFilter(field string, h Handler) Handler {
	return func(ctx context.Context, evt *event.Event) error {
		if evt.Field() != field {
			return nil
		}
		return h(ctx, evt)
	}
}
