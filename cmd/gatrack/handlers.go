package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vnykmshr/gatrack/pkg/analytics"
	gferrors "github.com/vnykmshr/gatrack/pkg/common/errors"
)

type handlers struct {
	tracker *analytics.Tracker
	async   *analytics.AsyncTransport
}

type screenRequest struct {
	Name string `json:"name"`
}

type eventRequest struct {
	Action   string `json:"action"`
	Category string `json:"category"`
	Label    string `json:"label"`
	Value    int64  `json:"value"`
}

type timingRequest struct {
	Category string `json:"category"`
	Variable string `json:"variable"`
	TimeMs   int64  `json:"time_ms"`
	Label    string `json:"label"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	pending := 0
	if h.async != nil {
		pending = h.async.Pending()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"initialized": h.tracker.Initialized(),
		"pending":     pending,
	})
}

func (h *handlers) screen(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	h.respond(w, h.tracker.TrackScreenView(r.Context(), req.Name))
}

func (h *handlers) event(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action is required"})
		return
	}
	if req.Category == "" {
		req.Category = analytics.DefaultCategory
	}
	h.respond(w, h.tracker.TrackEvent(r.Context(), analytics.Event{
		Action:   req.Action,
		Category: req.Category,
		Label:    req.Label,
		Value:    req.Value,
	}))
}

func (h *handlers) timing(w http.ResponseWriter, r *http.Request) {
	var req timingRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Category == "" || req.Variable == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category and variable are required"})
		return
	}
	h.respond(w, h.tracker.TrackTiming(r.Context(), analytics.Timing{
		Category: req.Category,
		Variable: req.Variable,
		Time:     time.Duration(req.TimeMs) * time.Millisecond,
		Label:    req.Label,
	}))
}

func (h *handlers) respond(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	case errors.Is(err, gferrors.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"status": "dropped"})
	case errors.Is(err, gferrors.ErrNotInitialized):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case gferrors.IsTemporary(err):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
