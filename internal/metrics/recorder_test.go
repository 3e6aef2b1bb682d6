package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_RegistersAndCounts(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncTransition("idle", "truck_departing")
	pr.IncIllegalTransition("shipment_complete", "shipment_complete")
	pr.AddTagReads(3, 1)
	pr.IncCycleOutcome("complete")
	pr.ObserveCycleDuration("complete", 42*time.Second)
	pr.IncNotification("shipment_complete")
	pr.SetCurrentState("truck_departing")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	HTTPHandler(reg).ServeHTTP(rr, req)

	body := rr.Body.String()
	require.Equal(t, 200, rr.Code)
	assert.Contains(t, body, `dispatchmon_state_transitions_total{from="idle",to="truck_departing"} 1`)
	assert.Contains(t, body, `dispatchmon_tag_reads_total 3`)
	assert.Contains(t, body, `dispatchmon_duplicate_tag_reads_total 1`)
	assert.Contains(t, body, `dispatchmon_cycles_total{outcome="complete"} 1`)
	assert.Contains(t, body, `dispatchmon_notifications_total{kind="shipment_complete"} 1`)
	assert.Contains(t, body, `dispatchmon_current_state{state="truck_departing"} 1`)
	assert.Contains(t, body, `dispatchmon_current_state{state="idle"} 0`)
}

func TestNoopRecorder_IsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncTransition("a", "b")
	r.AddTagReads(1, 0)
	r.SetCurrentState("idle")
	// No panic is the assertion.
	assert.NotNil(t, r)
}
