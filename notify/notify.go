// Package notify announces lifecycle status changes to other systems.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject prefix for status change events.
const DefaultSubject = "cip.lifecycle"

const flushTimeout = 5 * time.Second

// Event describes one persisted status change.
type Event struct {
	RunID    string    `json:"run_id"`
	Document string    `json:"document"`
	From     string    `json:"from,omitempty"`
	To       string    `json:"to"`
	At       time.Time `json:"at"`
}

// Notifier publishes status change events.
type Notifier interface {
	StatusChanged(ctx context.Context, event Event) error
	Close() error
}

// Nop discards events.
type Nop struct{}

// StatusChanged implements Notifier.
func (Nop) StatusChanged(context.Context, Event) error { return nil }

// Close implements Notifier.
func (Nop) Close() error { return nil }

// publisher is the subset of *nats.Conn used by NATS.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATS publishes events as JSON on "<subject>.<status>".
type NATS struct {
	conn    publisher
	subject string
	logger  *slog.Logger
}

// ConnectNATS connects to url and returns a NATS notifier.
func ConnectNATS(url, subject string, logger *slog.Logger) (*NATS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name("cipctl"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	logger.Debug("Connected to NATS", "url", url)
	return newNATS(conn, subject, logger), nil
}

func newNATS(conn publisher, subject string, logger *slog.Logger) *NATS {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATS{conn: conn, subject: subject, logger: logger}
}

// Subject returns the subject an event is published on.
func (n *NATS) Subject(event Event) string {
	return n.subject + "." + strings.ReplaceAll(event.To, " ", "_")
}

// StatusChanged implements Notifier.
func (n *NATS) StatusChanged(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := n.Subject(event)
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	// FlushWithContext rejects contexts without a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", subject, err)
	}
	n.logger.Debug("Published status change", "subject", subject, "document", event.Document)
	return nil
}

// Close implements Notifier.
func (n *NATS) Close() error {
	n.conn.Close()
	return nil
}
