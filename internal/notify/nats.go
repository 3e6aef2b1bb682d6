package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
	"git.home.luguber.info/inful/dispatchmon/internal/logfields"
)

// NATSConfig holds connection settings for the NATS notifier.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	StreamName    string
}

// NATSNotifier publishes notifications to JetStream subjects
// <prefix>.<kind>, e.g. dispatch.notify.missing_tags.
type NATSNotifier struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSNotifier connects to NATS and ensures the notification stream exists.
func NewNATSNotifier(cfg NATSConfig) (*NATSNotifier, error) {
	if cfg.URL == "" {
		return nil, derrors.ConfigError("notifications.nats_url", "required when NATS notifications are enabled")
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "dispatch.notify"
	}
	if cfg.StreamName == "" {
		cfg.StreamName = "DISPATCH_NOTIFY"
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, derrors.NotifyError("connect", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, derrors.NotifyError("jetstream", err)
	}

	n := &NATSNotifier{conn: conn, js: js, subject: cfg.SubjectPrefix}

	if err := n.ensureStream(cfg.StreamName); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("NATS notifier initialized",
		slog.String("url", cfg.URL),
		logfields.Subject(cfg.SubjectPrefix))

	return n, nil
}

// ensureStream creates or reuses the JetStream stream backing the subjects.
func (n *NATSNotifier) ensureStream(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := n.js.Stream(ctx, name)
	if err == nil {
		return nil
	}

	_, err = n.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        name,
		Description: "Outbound dispatch notifications",
		Subjects:    []string{n.subject + ".>"},
	})
	if err != nil {
		return derrors.NotifyError("create_stream", err)
	}
	return nil
}

// Notify publishes a message to <prefix>.<kind>.
func (n *NATSNotifier) Notify(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return derrors.NotifyError(msg.Kind, err)
	}
	subject := fmt.Sprintf("%s.%s", n.subject, msg.Kind)
	if _, err := n.js.Publish(ctx, subject, data); err != nil {
		return derrors.NotifyError(msg.Kind, err)
	}
	slog.Debug("Notification published",
		logfields.Kind(msg.Kind),
		logfields.Subject(subject),
		logfields.ShipmentID(msg.ShipmentID))
	return nil
}

// Close drains and closes the connection.
func (n *NATSNotifier) Close() {
	n.conn.Close()
}
