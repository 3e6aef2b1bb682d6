package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	transitions        *prom.CounterVec
	illegalTransitions *prom.CounterVec
	tagReads           prom.Counter
	duplicateTagReads  prom.Counter
	cycleOutcomes      *prom.CounterVec
	cycleDuration      *prom.HistogramVec
	notifications      *prom.CounterVec
	currentState       *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.transitions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "dispatchmon",
			Name:      "state_transitions_total",
			Help:      "Committed state transitions by edge",
		}, []string{"from", "to"})
		pr.illegalTransitions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "dispatchmon",
			Name:      "illegal_transitions_total",
			Help:      "Evaluator results rejected by the transition graph",
		}, []string{"from", "to"})
		pr.tagReads = prom.NewCounter(prom.CounterOpts{
			Namespace: "dispatchmon",
			Name:      "tag_reads_total",
			Help:      "Distinct tag identifiers merged into the read set",
		})
		pr.duplicateTagReads = prom.NewCounter(prom.CounterOpts{
			Namespace: "dispatchmon",
			Name:      "duplicate_tag_reads_total",
			Help:      "Ingested tag identifiers already present in the read set",
		})
		pr.cycleOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "dispatchmon",
			Name:      "cycles_total",
			Help:      "Dispatch cycles by final outcome",
		}, []string{"outcome"})
		pr.cycleDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "dispatchmon",
			Name:      "cycle_duration_seconds",
			Help:      "Duration from manifest installation to cycle close",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"outcome"})
		pr.notifications = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "dispatchmon",
			Name:      "notifications_total",
			Help:      "Outbound notifications enqueued by kind",
		}, []string{"kind"})
		pr.currentState = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "dispatchmon",
			Name:      "current_state",
			Help:      "One-hot gauge of the monitor's current state",
		}, []string{"state"})

		reg.MustRegister(
			pr.transitions,
			pr.illegalTransitions,
			pr.tagReads,
			pr.duplicateTagReads,
			pr.cycleOutcomes,
			pr.cycleDuration,
			pr.notifications,
			pr.currentState,
		)
	})
	return pr
}

func (pr *PrometheusRecorder) IncTransition(from, to string) {
	pr.transitions.WithLabelValues(from, to).Inc()
}

func (pr *PrometheusRecorder) IncIllegalTransition(from, to string) {
	pr.illegalTransitions.WithLabelValues(from, to).Inc()
}

func (pr *PrometheusRecorder) AddTagReads(added, duplicates int) {
	if added > 0 {
		pr.tagReads.Add(float64(added))
	}
	if duplicates > 0 {
		pr.duplicateTagReads.Add(float64(duplicates))
	}
}

func (pr *PrometheusRecorder) IncCycleOutcome(outcome string) {
	pr.cycleOutcomes.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) ObserveCycleDuration(outcome string, d time.Duration) {
	pr.cycleDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncNotification(kind string) {
	pr.notifications.WithLabelValues(kind).Inc()
}

// SetCurrentState sets the one-hot state gauge. States are a closed set, so
// stale labels are explicitly zeroed rather than deleted.
func (pr *PrometheusRecorder) SetCurrentState(state string) {
	for _, s := range monitorStates {
		v := 0.0
		if s == state {
			v = 1.0
		}
		pr.currentState.WithLabelValues(s).Set(v)
	}
}

// monitorStates mirrors the monitor's state enumeration. Kept as strings to
// avoid an import cycle with internal/monitor.
var monitorStates = []string{
	"idle",
	"truck_departing",
	"missing_tags",
	"extra_tags",
	"shipment_complete",
	"invalid",
}
