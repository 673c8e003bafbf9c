// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"context"
	"testing"
)

func TestNewProvider_EmptyEndpointYieldsNoopProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{ServiceName: "crashwatchd"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.tp != nil {
		t.Error("expected a nil internal tracer provider when Endpoint is empty")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on a noop provider should be a no-op: %v", err)
	}
}

func TestNewProvider_WithEndpointBuildsRealProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{
		ServiceName:    "crashwatchd",
		ServiceVersion: "test",
		Endpoint:       "127.0.0.1:4318",
		SamplingRate:   0.5,
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.tp == nil {
		t.Fatal("expected a real tracer provider when Endpoint is set")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestTracer_ReturnsUsableTracer(t *testing.T) {
	tr := Tracer("crashwatchd/test")
	_, span := tr.Start(context.Background(), "test-span")
	defer span.End()
	if span == nil {
		t.Error("expected a non-nil span from Start")
	}
}
