// Package realtime pushes events to per-user channels.
package realtime

import (
	"context"
	"time"

	"github.com/crm-mobile-api/internal/metrics"
)

// Publisher delivers an event to a single user's room.
type Publisher interface {
	Publish(ctx context.Context, user, event string, payload any) error
}

// Envelope is the wire shape shared by every backend.
type Envelope struct {
	Event     string    `json:"event"`
	Message   any       `json:"message"`
	Room      string    `json:"room"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

// Room returns the channel name a user's clients subscribe to.
func Room(user string) string { return "user:" + user }

func newEnvelope(user, event string, payload any) Envelope {
	return Envelope{Event: event, Message: payload, Room: Room(user), User: user, Timestamp: time.Now().UTC()}
}

type instrumented struct {
	next    Publisher
	metrics *metrics.Metrics
}

// WithMetrics counts successful and failed publishes per event.
func WithMetrics(p Publisher, m *metrics.Metrics) Publisher {
	if m == nil {
		return p
	}
	return &instrumented{next: p, metrics: m}
}

func (i *instrumented) Publish(ctx context.Context, user, event string, payload any) error {
	err := i.next.Publish(ctx, user, event, payload)
	status := "success"
	if err != nil {
		status = "failure"
	}
	i.metrics.RealtimePushes.WithLabelValues(event, status).Inc()
	return err
}
