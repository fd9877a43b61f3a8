package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const SubjectPrefix = "arena.events"

func Subject(eventID string) string {
	return SubjectPrefix + "." + eventID
}

// Connect opens a NATS connection that keeps reconnecting for as long as the
// process runs.
func Connect(url string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("arena"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Error("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			slog.Error("NATS error", "error", err)
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// NATSPublisher publishes messages on the event's subject so that every
// instance running a Relay delivers them to its local clients.
type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(_ context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(Subject(msg.EventID), data); err != nil {
		return fmt.Errorf("publish to %s: %w", Subject(msg.EventID), err)
	}
	return nil
}

// Relay forwards every message published under SubjectPrefix to the local
// hub until ctx is done.
func Relay(ctx context.Context, nc *nats.Conn, local Publisher) error {
	sub, err := nc.Subscribe(SubjectPrefix+".*", func(m *nats.Msg) {
		var msg Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			slog.Warn("dropping malformed realtime message", "subject", m.Subject, "error", err)
			return
		}
		if err := local.Publish(ctx, msg); err != nil {
			slog.Warn("relay to local hub failed", "event_id", msg.EventID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s.*: %w", SubjectPrefix, err)
	}
	slog.Info("relaying realtime messages from NATS", "subject", sub.Subject)

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}
