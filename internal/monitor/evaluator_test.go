package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/dispatchmon/internal/manifest"
	"git.home.luguber.info/inful/dispatchmon/internal/util/sets"
)

func activeManifest() *manifest.Shipment {
	return &manifest.Shipment{
		ShipmentID: "SHP-1",
		Orders: []manifest.Order{
			{Customer: manifest.Customer{Name: "Acme"}, Products: map[string]int{"WIDGET": 3}},
		},
	}
}

func TestEvaluate(t *testing.T) {
	expected := sets.New("T1", "T2", "T3")
	running := Countdown{Starting: 120, Current: 100, Running: true}
	expired := Countdown{Starting: 120, Current: 0, Running: true}

	cases := []struct {
		name string
		snap Snapshot
		want State
	}{
		{
			name: "no manifest, no tags",
			snap: Snapshot{TagIDs: sets.New[string]()},
			want: StateIdle,
		},
		{
			name: "no manifest, stray tags",
			snap: Snapshot{TagIDs: sets.New("T9")},
			want: StateExtraTags,
		},
		{
			name: "manifest, timer expired, empty reads",
			snap: Snapshot{Manifest: activeManifest(), Expected: expected, TagIDs: sets.New[string](), Timer: expired},
			want: StateMissingTags,
		},
		{
			name: "manifest, timer expired, complete reads still missing",
			snap: Snapshot{Manifest: activeManifest(), Expected: expected, TagIDs: expected.Clone(), Timer: expired},
			want: StateMissingTags,
		},
		{
			name: "manifest, timer negative",
			snap: Snapshot{Manifest: activeManifest(), Expected: expected, TagIDs: sets.New("T1"), Timer: Countdown{Current: -4, Running: true}},
			want: StateMissingTags,
		},
		{
			name: "manifest, running, exact match",
			snap: Snapshot{Manifest: activeManifest(), Expected: expected, TagIDs: sets.New("T1", "T2", "T3"), Timer: running},
			want: StateShipmentComplete,
		},
		{
			name: "manifest, running, incomplete",
			snap: Snapshot{Manifest: activeManifest(), Expected: expected, TagIDs: sets.New("T1", "T2"), Timer: running},
			want: StateTruckDeparting,
		},
		{
			name: "manifest, running, superset is not complete",
			snap: Snapshot{Manifest: activeManifest(), Expected: expected, TagIDs: sets.New("T1", "T2", "T3", "T4"), Timer: running},
			want: StateTruckDeparting,
		},
		{
			name: "manifest, running, no reads yet",
			snap: Snapshot{Manifest: activeManifest(), Expected: expected, TagIDs: sets.New[string](), Timer: running},
			want: StateTruckDeparting,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.snap))
		})
	}
}

func TestEvaluate_DoesNotMutateSnapshot(t *testing.T) {
	snap := Snapshot{
		Manifest: activeManifest(),
		Expected: sets.New("T1"),
		TagIDs:   sets.New("T1"),
		Timer:    Countdown{Starting: 10, Current: 5, Running: true},
	}
	_ = Evaluate(snap)
	assert.True(t, snap.TagIDs.Equal(sets.New("T1")))
	assert.Equal(t, int64(5), snap.Timer.Current)
}
