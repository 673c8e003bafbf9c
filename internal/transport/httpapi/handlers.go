// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/crashwatch/crashwatch/internal/detector"
)

type sampleRequest struct {
	T float64 `json:"t"`
	V float64 `json:"v"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (h *handlers) postAccelSample(w http.ResponseWriter, r *http.Request) {
	h.postSample(w, r, h.service.AddAccelerometer)
}

func (h *handlers) postGPSSample(w http.ResponseWriter, r *http.Request) {
	h.postSample(w, r, h.service.AddGPS)
}

func (h *handlers) postSample(w http.ResponseWriter, r *http.Request, add func(t, v float64) bool) {
	var req sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "crashwatch/invalid_body", "Invalid Request Body", "INVALID_BODY", err.Error())
		return
	}

	accepted := add(req.T, req.V)
	writeJSON(w, http.StatusOK, map[string]any{"accepted": accepted})
}

func (h *handlers) postProcess(w http.ResponseWriter, r *http.Request) {
	result := h.service.Process(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"more_work": result.MoreWork,
		"type":      result.Type.String(),
	})
}

func (h *handlers) getCrash(w http.ResponseWriter, r *http.Request) {
	crash := h.service.CrashResult()
	writeJSON(w, http.StatusOK, map[string]any{"t": crash.T, "v": crash.V})
}

func (h *handlers) postMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "crashwatch/invalid_body", "Invalid Request Body", "INVALID_BODY", err.Error())
		return
	}

	mode, ok := parseMode(req.Mode)
	if !ok {
		writeProblem(w, r, http.StatusBadRequest, "crashwatch/invalid_mode", "Invalid Mode", "INVALID_MODE", "mode must be one of off, on, debug")
		return
	}

	h.service.SetMode(mode)
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode.String()})
}

func (h *handlers) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func parseMode(s string) (detector.Mode, bool) {
	switch s {
	case "off", "OFF":
		return detector.ModeOff, true
	case "on", "ON":
		return detector.ModeOn, true
	case "debug", "DEBUG":
		return detector.ModeDebug, true
	default:
		return 0, false
	}
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
