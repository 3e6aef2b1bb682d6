package metrics

import "time"

// Recorder defines observability hooks for the dispatch monitor.
// Implementations may forward to Prometheus, OpenTelemetry, etc. The
// NoopRecorder allows optional injection without nil checks at call sites.
type Recorder interface {
	IncTransition(from, to string)
	IncIllegalTransition(from, to string)
	AddTagReads(added, duplicates int)
	IncCycleOutcome(outcome string) // outcome: complete|missing_tags|hard_reset
	ObserveCycleDuration(outcome string, d time.Duration)
	IncNotification(kind string)
	SetCurrentState(state string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncTransition(string, string)               {}
func (NoopRecorder) IncIllegalTransition(string, string)        {}
func (NoopRecorder) AddTagReads(int, int)                       {}
func (NoopRecorder) IncCycleOutcome(string)                     {}
func (NoopRecorder) ObserveCycleDuration(string, time.Duration) {}
func (NoopRecorder) IncNotification(string)                     {}
func (NoopRecorder) SetCurrentState(string)                     {}
