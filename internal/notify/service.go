package notify

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/dispatchmon/internal/events"
	"git.home.luguber.info/inful/dispatchmon/internal/logfields"
)

// Service consumes NotificationRequested events off the in-process bus and
// forwards them to the configured Notifier. Failures are logged, never
// propagated back to the monitor.
type Service struct {
	notifier Notifier
	bus      *events.Bus
	timeout  time.Duration
}

// NewService creates a notification service. A nil notifier falls back to
// LogNotifier.
func NewService(notifier Notifier, bus *events.Bus) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{notifier: notifier, bus: bus, timeout: 5 * time.Second}
}

// Run consumes notification requests until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ch, unsub := events.Subscribe[events.NotificationRequested](s.bus, 64)
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			s.deliver(ctx, evt)
		}
	}
}

func (s *Service) deliver(ctx context.Context, evt events.NotificationRequested) {
	msg := Message{
		Kind:       evt.Kind,
		CycleID:    evt.CycleID,
		ShipmentID: evt.ShipmentID,
		Manifest:   evt.Manifest,
		TagIDs:     evt.TagIDs,
		At:         evt.At,
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.notifier.Notify(dctx, msg); err != nil {
		slog.Warn("Notification delivery failed",
			logfields.Kind(msg.Kind),
			logfields.CycleID(msg.CycleID),
			logfields.Error(err))
		return
	}
}
