package notify

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/dispatchmon/internal/logfields"
)

// LogNotifier writes notifications to the structured log. Default when no
// outbound channel is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, msg Message) error {
	slog.Info("Notification",
		logfields.Kind(msg.Kind),
		logfields.CycleID(msg.CycleID),
		logfields.ShipmentID(msg.ShipmentID),
		logfields.TagCount(len(msg.TagIDs)))
	return nil
}

func (LogNotifier) Close() {}
