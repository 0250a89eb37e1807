package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
)

// Publisher implements ports.Notifier, ports.MarkerSink and
// ports.EventPublisher using NATS. Location samples go through JetStream so
// a briefly disconnected contact channel still receives recent positions;
// marker and broadcast updates are fire-and-forget core NATS.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the tracking stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "TRACK_SAMPLES",
		Subjects:  []string{"safety.track.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// Notify publishes one location sample on the contact's tracking subject.
func (p *Publisher) Notify(ctx context.Context, contact domain.Contact, sample domain.LocationSample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("safety.track.location."+contact.ID, data)
	return err
}

// markerEvent is the wire shape of map overlay updates.
type markerEvent struct {
	Action string         `json:"action"`
	ID     string         `json:"id"`
	Marker *domain.Marker `json:"marker,omitempty"`
}

// MarkerAdded announces a new or moved overlay.
func (p *Publisher) MarkerAdded(ctx context.Context, m domain.Marker) {
	data, err := json.Marshal(markerEvent{Action: "add", ID: m.ID, Marker: &m})
	if err != nil {
		return
	}
	_ = p.conn.Publish("safety.map.markers", data)
}

// MarkerRemoved announces an overlay removal.
func (p *Publisher) MarkerRemoved(ctx context.Context, id string) {
	data, err := json.Marshal(markerEvent{Action: "remove", ID: id})
	if err != nil {
		return
	}
	_ = p.conn.Publish("safety.map.markers", data)
}

// PublishBroadcast fans application updates out to connected clients.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("safety.updates.broadcast", data)
}

// Status reports the connection state, for readiness checks.
func (p *Publisher) Status() nats.Status {
	return p.conn.Status()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
