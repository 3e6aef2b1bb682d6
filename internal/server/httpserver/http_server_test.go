package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/dispatchmon/internal/config"
	"git.home.luguber.info/inful/dispatchmon/internal/manifest"
	"git.home.luguber.info/inful/dispatchmon/internal/monitor"
	"git.home.luguber.info/inful/dispatchmon/internal/util/sets"
)

type monitorStub struct {
	merged [][]string
}

func (m *monitorStub) Install(context.Context, *manifest.Shipment) error { return nil }
func (m *monitorStub) MergeTags(tagIDs []string)                         { m.merged = append(m.merged, tagIDs) }
func (m *monitorStub) Snapshot(context.Context) (monitor.Snapshot, error) {
	return monitor.Snapshot{
		State:    monitor.StateIdle,
		Expected: sets.New[string](),
		TagIDs:   sets.New[string](),
		TakenAt:  time.Now(),
	}, nil
}

type daemonStub struct{}

func (daemonStub) GetStatus() string       { return "running" }
func (daemonStub) GetStartTime() time.Time { return time.Unix(0, 0) }
func (daemonStub) ReaderActive() bool      { return true }

func TestAPIMux_RoutesStatus(t *testing.T) {
	srv := New(config.Default(), Options{Monitor: &monitorStub{}, Daemon: daemonStub{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rr := httptest.NewRecorder()
	srv.apiMux().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"idle"`)
}

func TestAPIMux_RoutesReads(t *testing.T) {
	mon := &monitorStub{}
	srv := New(config.Default(), Options{Monitor: mon, Daemon: daemonStub{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reads", strings.NewReader(`{"tag_ids":["T1"]}`))
	rr := httptest.NewRecorder()
	srv.apiMux().ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, mon.merged, 1)
}

func TestAdminMux_Health(t *testing.T) {
	srv := New(config.Default(), Options{Monitor: &monitorStub{}, Daemon: daemonStub{}})

	for _, path := range []string{"/health", "/healthz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		srv.adminMux().ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Contains(t, rr.Body.String(), `"status":"healthy"`)
		assert.Contains(t, rr.Body.String(), `"reader_active":true`)
	}
}

func TestAdminMux_MetricsAbsentWithoutHandler(t *testing.T) {
	srv := New(config.Default(), Options{Monitor: &monitorStub{}, Daemon: daemonStub{}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	srv.adminMux().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminMux_MetricsServedWhenConfigured(t *testing.T) {
	prom := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("dispatchmon_tag_reads_total 0\n"))
	})
	srv := New(config.Default(), Options{Monitor: &monitorStub{}, Daemon: daemonStub{}, PrometheusHandler: prom})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	srv.adminMux().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dispatchmon_tag_reads_total")
}
