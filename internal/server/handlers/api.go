package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
	"git.home.luguber.info/inful/dispatchmon/internal/eventstore"
	"git.home.luguber.info/inful/dispatchmon/internal/logfields"
	"git.home.luguber.info/inful/dispatchmon/internal/manifest"
	"git.home.luguber.info/inful/dispatchmon/internal/monitor"
	"git.home.luguber.info/inful/dispatchmon/internal/server/responses"
)

const defaultHistoryLimit = 20

// MonitorAPI is the slice of the monitor consumed by the HTTP boundary.
type MonitorAPI interface {
	Install(ctx context.Context, sh *manifest.Shipment) error
	MergeTags(tagIDs []string)
	Snapshot(ctx context.Context) (monitor.Snapshot, error)
}

// HistorySource serves closed and running cycle summaries.
type HistorySource interface {
	Recent(n int) []eventstore.CycleSummary
	Get(cycleID string) (eventstore.CycleSummary, bool)
}

// DispatchHandlers contains the dispatch API HTTP handlers.
type DispatchHandlers struct {
	mon          MonitorAPI
	history      HistorySource
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewDispatchHandlers creates the dispatch API handler set. history may be nil,
// in which case the history endpoint serves an empty list.
func NewDispatchHandlers(mon MonitorAPI, history HistorySource) *DispatchHandlers {
	return &DispatchHandlers{
		mon:          mon,
		history:      history,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleManifest accepts a shipment manifest and installs it into the monitor.
func (h *DispatchHandlers) HandleManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var sh manifest.Shipment
	if err := json.NewDecoder(r.Body).Decode(&sh); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationFailed("body", "malformed JSON manifest"))
		return
	}

	if err := h.mon.Install(r.Context(), &sh); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	snap, err := h.mon.Snapshot(r.Context())
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	slog.Info("Manifest accepted",
		logfields.ShipmentID(sh.ShipmentID),
		logfields.CycleID(snap.CycleID),
		logfields.TagCount(snap.Expected.Len()))

	resp := responses.IntakeResponse{
		Status:        "accepted",
		ShipmentID:    sh.ShipmentID,
		CycleID:       snap.CycleID,
		ExpectedCount: snap.Expected.Len(),
		Timestamp:     time.Now().UTC(),
	}
	_ = writeJSONPretty(w, r, http.StatusAccepted, resp)
}

// readsRequest is the tag read ingestion payload.
type readsRequest struct {
	TagIDs []string `json:"tag_ids"`
}

// HandleReads accepts a batch of decoded tag identifiers, standing in for a
// reader radio report at the HTTP boundary.
func (h *DispatchHandlers) HandleReads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req readsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationFailed("body", "malformed JSON read batch"))
		return
	}
	if len(req.TagIDs) == 0 {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationFailed("tag_ids", "at least one tag id required"))
		return
	}

	h.mon.MergeTags(req.TagIDs)

	resp := responses.ReadsResponse{
		Status:    "accepted",
		Accepted:  len(req.TagIDs),
		Timestamp: time.Now().UTC(),
	}
	_ = writeJSONPretty(w, r, http.StatusAccepted, resp)
}

// HandleStatus serves the live monitor status.
func (h *DispatchHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}

	snap, err := h.mon.Snapshot(r.Context())
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	resp := statusFromSnapshot(snap)
	_ = writeJSONPretty(w, r, http.StatusOK, resp)
}

// statusFromSnapshot projects a monitor snapshot into the API status view.
func statusFromSnapshot(snap monitor.Snapshot) responses.StatusResponse {
	missing := snap.Expected.Difference(snap.TagIDs).Values()
	extra := snap.TagIDs.Difference(snap.Expected).Values()
	sort.Strings(missing)
	sort.Strings(extra)

	resp := responses.StatusResponse{
		State:          string(snap.State),
		CycleID:        snap.CycleID,
		ShipmentID:     snap.ShipmentID(),
		CycleActive:    snap.CycleActive(),
		ExpectedCount:  snap.Expected.Len(),
		ObservedCount:  snap.TagIDs.Len(),
		MissingTags:    missing,
		ExtraTags:      extra,
		TimerRunning:   snap.Timer.Running,
		TimerRemaining: snap.Timer.Current,
		Timestamp:      snap.TakenAt.UTC().Format(time.RFC3339),
	}
	if !snap.CycleStart.IsZero() {
		start := snap.CycleStart.UTC().Format(time.RFC3339)
		resp.CycleStart = &start
	}
	return resp
}

// HandleHistory serves recent cycle summaries, or a single cycle when the
// cycle_id query parameter is present.
func (h *DispatchHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}

	if h.history == nil {
		_ = writeJSONPretty(w, r, http.StatusOK, []eventstore.CycleSummary{})
		return
	}

	if cycleID := r.URL.Query().Get("cycle_id"); cycleID != "" {
		summary, ok := h.history.Get(cycleID)
		if !ok {
			h.errorAdapter.WriteErrorResponse(w, r, derrors.NewError(derrors.CategoryNotFound, "cycle not found").
				WithContext("cycle_id", cycleID).
				Build())
			return
		}
		_ = writeJSONPretty(w, r, http.StatusOK, summary)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationFailed("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	_ = writeJSONPretty(w, r, http.StatusOK, h.history.Recent(limit))
}

func (h *DispatchHandlers) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	err := derrors.ValidationFailed("method", "invalid HTTP method").
		WithContext("method", r.Method).
		WithContext("allowed_method", allowed)
	w.Header().Set("Allow", allowed)
	h.errorAdapter.WriteErrorResponse(w, r, err)
}
