package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
)

type testEvent struct {
	Value int
}

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[testEvent](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), testEvent{Value: 123}))

	select {
	case got := <-ch:
		require.Equal(t, 123, got.Value)
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_TypedDeliveryIgnoresOtherTypes(t *testing.T) {
	b := NewBus()
	defer b.Close()

	stateCh, unsub := Subscribe[StateChanged](b, 1)
	defer unsub()

	require.NoError(t, b.Publish(context.Background(), testEvent{Value: 1}))

	select {
	case <-stateCh:
		t.Fatal("StateChanged subscriber received unrelated event")
	case <-time.After(50 * time.Millisecond):
		// ok
	}
}

func TestBus_PublishBackpressure(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubscribe := Subscribe[testEvent](b, 0) // unbuffered; no receiver => blocks
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := b.Publish(ctx, testEvent{Value: 1})
	require.Error(t, err)

	classified, ok := derrors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, derrors.CategoryRuntime, classified.Category())
}

func TestBus_Close(t *testing.T) {
	b := NewBus()

	ch, _ := Subscribe[testEvent](b, 1)
	b.Close()

	_, ok := <-ch
	require.False(t, ok)

	err := b.Publish(context.Background(), testEvent{Value: 1})
	require.Error(t, err)
	require.Equal(t, 0, SubscriberCount[testEvent](b))
}
