package reader

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
)

type captureSink struct {
	mu      sync.Mutex
	batches [][]string
}

func (c *captureSink) MergeTags(tagIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, tagIDs)
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func TestSimDriver_StartStopLifecycle(t *testing.T) {
	sink := &captureSink{}
	d := NewSimDriver(sink, nil)

	assert.False(t, d.IsActive())
	require.NoError(t, d.Start(context.Background()))
	assert.True(t, d.IsActive())

	// Double start is rejected.
	err := d.Start(context.Background())
	require.Error(t, err)
	assert.True(t, derrors.IsPrecondition(err))

	require.NoError(t, d.Stop())
	assert.False(t, d.IsActive())
	require.NoError(t, d.Stop())
}

func TestSimDriver_ReplaysScript(t *testing.T) {
	sink := &captureSink{}
	d := NewSimDriver(sink, []ScriptedRead{
		{After: 5 * time.Millisecond, TagIDs: []string{"T1", "T2"}},
		{After: 10 * time.Millisecond, TagIDs: []string{"T3"}},
	})

	require.NoError(t, d.Start(context.Background()))
	defer func() { _ = d.Stop() }()

	require.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, []string{"T1", "T2"}, sink.batches[0])
	assert.Equal(t, []string{"T3"}, sink.batches[1])
}

func TestSimDriver_InjectRequiresActive(t *testing.T) {
	sink := &captureSink{}
	d := NewSimDriver(sink, nil)

	err := d.Inject([]string{"T1"})
	require.Error(t, err)
	assert.True(t, derrors.IsPrecondition(err))

	require.NoError(t, d.Start(context.Background()))
	defer func() { _ = d.Stop() }()

	require.NoError(t, d.Inject([]string{"T1"}))
	assert.Equal(t, 1, sink.count())
}

func TestSimDriver_ResyncCounts(t *testing.T) {
	d := NewSimDriver(&captureSink{}, nil)
	d.Resync()
	d.Resync()
	assert.Equal(t, 2, d.Resyncs())
}
