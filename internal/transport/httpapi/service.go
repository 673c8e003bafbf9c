// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package httpapi is the outer, sink-agnostic HTTP ingest surface for the
// crash-detection pipeline: chi-routed handlers accept accelerometer and
// GPS samples, drive the cooperative scheduler, and expose the current
// mode and latest crash result. It owns the single mutex serializing
// access to the non-reentrant detector core; nothing downstream of this
// package touches the detector directly.
package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/crashwatch/crashwatch/internal/detector"
	"github.com/crashwatch/crashwatch/internal/journal"
	"github.com/crashwatch/crashwatch/internal/metrics"
	"github.com/crashwatch/crashwatch/internal/xlog"
)

// CrashSink receives confirmed crash events for downstream forwarding
// (the fleet reporter). Optional; a nil sink disables forwarding.
type CrashSink interface {
	Publish(ctx context.Context, crash detector.CrashResult)
}

// Service wires the detector core to the HTTP transport, serializing all
// access with a single mutex and recording metrics/journal entries around
// every scheduler tick.
type Service struct {
	mu       sync.Mutex
	detector *detector.Detector
	journal  *journal.Journal
	sink     CrashSink
}

// NewService creates a Service wrapping det. journal and sink may be nil.
func NewService(det *detector.Detector, j *journal.Journal, sink CrashSink) *Service {
	return &Service{detector: det, journal: j, sink: sink}
}

// AddAccelerometer ingests one accelerometer sample.
func (s *Service) AddAccelerometer(t, v float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.detector.AddAccelerometer(t, v)
	if ok {
		metrics.RecordSampleAccepted("accel")
	} else {
		metrics.RecordSampleRejected("accel")
	}
	return ok
}

// AddGPS ingests one GPS sample.
func (s *Service) AddGPS(t, v float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.detector.AddGPS(t, v)
	if ok {
		metrics.RecordSampleAccepted("gps")
	} else {
		metrics.RecordSampleRejected("gps")
	}
	return ok
}

// Process drains the scheduler to completion, journaling and forwarding
// any confirmed crash. It drives ProcessUnit directly rather than calling
// ProcessToResult so it can observe the number of iterations the drain
// took, matching ProcessToResult's own more_work/type loop condition.
func (s *Service) Process(ctx context.Context) detector.Result {
	s.mu.Lock()
	result := detector.Result{MoreWork: true}
	iterations := 0
	for result.MoreWork && result.Type == detector.ResultNone {
		result = s.detector.ProcessUnit()
		iterations++
	}
	depths := s.detector.QueueDepths()
	latest := s.detector.GetCrashResult()
	s.mu.Unlock()

	metrics.ObserveProcessIterations(iterations)
	metrics.SetBufferDepth("over_threshold", float64(depths.OverThreshold))
	metrics.SetBufferDepth("window", float64(depths.Window))
	metrics.SetBufferDepth("potential_crash", float64(depths.PotentialCrash))

	if result.Type != detector.ResultNone {
		metrics.RecordCrashEvent(result.Type.String())
	}

	if result.Type == detector.ResultCrashGPS {
		if s.journal != nil {
			entry := journal.Entry{T: latest.T, Magnitude: latest.V, Epoch: time.Now().Unix()}
			if err := s.journal.Append(ctx, entry); err != nil {
				xlog.WithContext(ctx, xlog.WithComponent("httpapi")).Error().Err(err).Msg("failed to journal confirmed crash")
			}
		}
		if s.sink != nil {
			s.sink.Publish(ctx, latest)
		}
	}

	return result
}

// CrashResult reads the latest emitted crash record.
func (s *Service) CrashResult() detector.CrashResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.GetCrashResult()
}

// SetMode sets the detector's mode.
func (s *Service) SetMode(m detector.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detector.SetMode(m)
}

// Mode returns the detector's current mode.
func (s *Service) Mode() detector.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.Mode()
}

// Counters returns the accepted/out-of-order sample counters.
func (s *Service) Counters() detector.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.Counters()
}

// ApplyConfig swaps in a hot-reloaded detector configuration.
func (s *Service) ApplyConfig(cfg detector.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detector.SetConfig(cfg)
}
