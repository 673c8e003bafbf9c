// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/crashwatch/crashwatch/internal/xlog"
)

const headerRequestID = "X-Request-Id"

// writeProblem writes an RFC 7807 problem+json response, tagging it with
// the request's correlation ID when present.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, title, code, detail string) {
	reqID := xlog.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = w.Header().Get(headerRequestID)
	}

	body := map[string]any{
		"type":       problemType,
		"title":      title,
		"status":     status,
		"code":       code,
		"instance":   r.URL.EscapedPath(),
		"request_id": reqID,
	}
	if detail != "" {
		body["detail"] = detail
	}

	w.Header().Set(headerRequestID, reqID)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		xlog.WithComponent("httpapi").Error().Err(err).Str("type", problemType).Msg("failed to encode problem response")
	}
}
