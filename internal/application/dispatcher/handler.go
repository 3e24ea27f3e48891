package dispatcher

import (
	"context"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/event"
)

// Handler processes a domain event
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo pairs a handler with its registration name for debugging
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
