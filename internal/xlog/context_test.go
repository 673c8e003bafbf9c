// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package xlog

import "testing"

func TestContextWithRequestID_RoundTrips(t *testing.T) {
	ctx := ContextWithRequestID(t.Context(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext = %q, want req-123", got)
	}
}

func TestContextWithSessionID_RoundTrips(t *testing.T) {
	ctx := ContextWithSessionID(t.Context(), "sess-456")
	if got := SessionIDFromContext(ctx); got != "sess-456" {
		t.Errorf("SessionIDFromContext = %q, want sess-456", got)
	}
}

func TestRequestIDFromContext_EmptyWhenAbsent(t *testing.T) {
	if got := RequestIDFromContext(t.Context()); got != "" {
		t.Errorf("RequestIDFromContext = %q, want empty string", got)
	}
}

func TestRequestIDFromContext_EmptyOnNilContext(t *testing.T) {
	if got := RequestIDFromContext(nil); got != "" {
		t.Errorf("RequestIDFromContext(nil) = %q, want empty string", got)
	}
}

func TestContextWithRequestID_NilContextDoesNotPanic(t *testing.T) {
	ctx := ContextWithRequestID(nil, "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext = %q, want req-1", got)
	}
}

func TestRequestAndSessionID_AreIndependent(t *testing.T) {
	ctx := ContextWithRequestID(t.Context(), "req-1")
	if got := SessionIDFromContext(ctx); got != "" {
		t.Errorf("SessionIDFromContext on a request-only context = %q, want empty", got)
	}
}
