// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package httpapi

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/crashwatch/crashwatch/internal/admission"
	"github.com/crashwatch/crashwatch/internal/metrics"
	"github.com/crashwatch/crashwatch/internal/xlog"
	"github.com/google/uuid"
)

// recoverer ensures a panic inside any downstream handler does not crash
// the process. It logs the panic with a stack trace and returns a 500
// problem response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				buf := make([]byte, 8192)
				n := runtime.Stack(buf, false)

				logger := xlog.WithComponent("httpapi")
				logger.Error().
					Str("event", "panic.recovered").
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic_value", rec).
					Str("stack_trace", string(buf[:n])).
					Msg("panic recovered in HTTP handler")

				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"type":   "system/internal_error",
					"title":  "Internal Server Error",
					"status": http.StatusInternalServerError,
					"code":   "INTERNAL_ERROR",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withRequestID assigns a request ID from the incoming header or mints a
// fresh one, threading it onto the request context and response header.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := xlog.ContextWithRequestID(r.Context(), reqID)
		w.Header().Set(headerRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog logs one structured entry per request with latency and status.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		logger := xlog.WithContext(r.Context(), xlog.WithComponent("httpapi"))
		logger.Info().
			Str("event", "http.request").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("latency", time.Since(start)).
			Msg("handled request")
	})
}

// admissionGate rejects ingest requests with 503 when mon reports
// sustained CPU pressure, so a struggling instance sheds load instead of
// falling behind and classifying stale windows. A nil mon is a no-op.
func admissionGate(mon *admission.Monitor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if mon == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ok, reason := mon.CanAdmit(); !ok {
				metrics.RecordAdmissionRejected(string(reason))
				writeProblem(w, r, http.StatusServiceUnavailable,
					"system/overloaded", "Service Overloaded", "ADMISSION_REJECTED",
					"ingest temporarily rejected due to sustained CPU pressure")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
