package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/logfields"
)

// BuildEvent is published after every daemon build for downstream consumers
// (deploy hooks, notifications).
type BuildEvent struct {
	BuildID   string    `json:"build_id"`
	Outcome   string    `json:"outcome"`
	Posts     int       `json:"posts"`
	Rendered  int       `json:"rendered"`
	Skipped   int       `json:"skipped"`
	Reason    string    `json:"reason"` // initial|changed|scheduled
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher publishes build events to a NATS JetStream subject.
type EventPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewEventPublisher connects to NATS and prepares the build-events stream.
// The configured subject is the prefix; events go to <subject>.<outcome>.
func NewEventPublisher(cfg *config.NATSConfig) (*EventPublisher, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("build event publishing is disabled")
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = "blogbuilder.builds"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     "BLOGBUILDER_BUILDS",
		Subjects: []string{subject + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure build events stream: %w", err)
	}

	slog.Info("Build event publishing enabled", logfields.URL(cfg.URL), slog.String("subject", subject))
	return &EventPublisher{conn: conn, js: js, subject: subject}, nil
}

// Publish sends one build event; the outcome becomes the subject suffix so
// consumers can subscribe to failures only.
func (p *EventPublisher) Publish(ctx context.Context, ev BuildEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	subject := p.subject + "." + ev.Outcome
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	slog.Debug("Published build event", logfields.BuildID(ev.BuildID), slog.String("subject", subject))
	return nil
}

// Close drains and closes the NATS connection.
func (p *EventPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
