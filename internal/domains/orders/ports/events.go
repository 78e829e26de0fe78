package ports

import (
	"context"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
)

// EventPublisher delivers domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish implements EventPublisher.
func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }
