package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/dispatchmon/internal/events"
)

type captureNotifier struct {
	mu    sync.Mutex
	msgs  []Message
	fails int
	err   error
}

func (c *captureNotifier) Notify(_ context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		c.fails++
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captureNotifier) Close() {}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func (c *captureNotifier) failCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fails
}

func TestService_ForwardsBusEvents(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	notifier := &captureNotifier{}
	svc := NewService(notifier, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx) }()

	// Wait until the subscription is registered before publishing.
	require.Eventually(t, func() bool {
		return events.SubscriberCount[events.NotificationRequested](bus) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Publish(ctx, events.NotificationRequested{
		Kind:       events.KindShipmentComplete,
		CycleID:    "c1",
		ShipmentID: "SHP-1",
		TagIDs:     []string{"T1"},
		At:         time.Now(),
	}))

	require.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 5*time.Millisecond)

	notifier.mu.Lock()
	msg := notifier.msgs[0]
	notifier.mu.Unlock()
	assert.Equal(t, events.KindShipmentComplete, msg.Kind)
	assert.Equal(t, "SHP-1", msg.ShipmentID)
}

func TestService_DeliveryFailureDoesNotStopLoop(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	notifier := &captureNotifier{err: fmt.Errorf("nats down")}
	svc := NewService(notifier, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		return events.SubscriberCount[events.NotificationRequested](bus) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Publish(ctx, events.NotificationRequested{Kind: events.KindMissingTags}))

	// Publish returns once the event is buffered; wait for the failed
	// delivery attempt before letting the notifier recover.
	require.Eventually(t, func() bool { return notifier.failCount() == 1 }, time.Second, 5*time.Millisecond)
	notifier.mu.Lock()
	notifier.err = nil
	notifier.mu.Unlock()

	require.NoError(t, bus.Publish(ctx, events.NotificationRequested{Kind: events.KindExtraTags}))
	require.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 5*time.Millisecond)

	notifier.mu.Lock()
	delivered := notifier.msgs[0]
	notifier.mu.Unlock()
	assert.Equal(t, events.KindExtraTags, delivered.Kind)
}

func TestNewService_NilNotifierFallsBackToLog(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()
	svc := NewService(nil, bus)
	assert.NotNil(t, svc.notifier)
}
