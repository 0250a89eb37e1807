package ports

import (
	"context"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
)

// ContactStorage persists the trusted-contact list as one durable value.
type ContactStorage interface {
	// Load returns the stored list, or (nil, nil) when nothing is stored.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored list. The write is complete when Save returns.
	Save(ctx context.Context, data []byte) error
}

// MarkerSink mirrors overlay changes to whatever renders them (a WebSocket
// relay towards map clients, a broker, a test recorder).
type MarkerSink interface {
	MarkerAdded(ctx context.Context, m domain.Marker)
	MarkerRemoved(ctx context.Context, id string)
}

// Notifier delivers one location sample to one contact. Failures are reported
// to the caller but never retried here.
type Notifier interface {
	Notify(ctx context.Context, contact domain.Contact, sample domain.LocationSample) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher pushes domain events to a message broker for live clients.
type EventPublisher interface {
	PublishBroadcast(ctx context.Context, data []byte) error
}
