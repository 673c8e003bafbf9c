// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package admission gates the HTTP ingest surface against sustained CPU
// pressure: a device fleet can push samples faster than a single
// crashwatchd instance can drain them, and rejecting new samples under
// load is safer than letting the process fall behind and start
// classifying stale windows.
package admission

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Reason explains why an admission check failed, for metrics/response
// taxonomy.
type Reason string

const (
	ReasonAdmitted     Reason = "admitted"
	ReasonCPUSaturated Reason = "cpu_saturated"
)

type cpuSample struct {
	at   time.Time
	load float64
}

// Monitor tracks a rolling window of system load samples and decides
// whether new ingest requests should be admitted.
type Monitor struct {
	cores        float64
	cpuThreshold float64

	mu         sync.Mutex
	samples    []cpuSample
	window     time.Duration
	minSamples int
	overRatio  float64
	lastWarnAt time.Time
	logger     zerolog.Logger
	clock      func() time.Time
}

// NewMonitor creates a Monitor. cpuThresholdScale multiplies runtime.NumCPU()
// to get the per-sample load threshold (e.g. 1.5 means cores*1.5).
func NewMonitor(cpuThresholdScale float64) *Monitor {
	if cpuThresholdScale <= 0 {
		cpuThresholdScale = 1.5
	}
	return &Monitor{
		cores:        float64(runtime.NumCPU()),
		cpuThreshold: cpuThresholdScale,
		window:       30 * time.Second,
		minSamples:   10,
		overRatio:    0.5,
		logger:       zerolog.Nop(),
		clock:        time.Now,
	}
}

// SetLogger injects a logger for operational visibility into admission
// decisions.
func (m *Monitor) SetLogger(l zerolog.Logger) {
	m.logger = l
}

// ObserveCPULoad records a load-average sample for the rolling window.
func (m *Monitor) ObserveCPULoad(load float64) {
	m.observeCPULoadAt(load, m.clock())
}

func (m *Monitor) observeCPULoadAt(load float64, at time.Time) {
	if math.IsNaN(load) || math.IsInf(load, 0) || load < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, cpuSample{at: at, load: load})
	m.pruneLocked(at)
}

// CanAdmit reports whether a new ingest request should be accepted. With
// too few recent samples it fails open (admits), since a cold-started
// monitor must not block traffic before it has gathered data.
func (m *Monitor) CanAdmit() (bool, Reason) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	m.pruneLocked(now)

	if len(m.samples) < m.minSamples {
		return true, ReasonAdmitted
	}

	threshold := m.cores * m.cpuThreshold
	var over int
	for _, s := range m.samples {
		if s.load >= threshold {
			over++
		}
	}

	ratio := float64(over) / float64(len(m.samples))
	if ratio >= m.overRatio {
		if now.Sub(m.lastWarnAt) >= time.Minute {
			m.lastWarnAt = now
			m.logger.Warn().
				Float64("ratio", ratio).
				Float64("threshold", threshold).
				Msg("admission blocked: sustained CPU pressure")
		}
		return false, ReasonCPUSaturated
	}
	return true, ReasonAdmitted
}

func (m *Monitor) pruneLocked(now time.Time) {
	cutoff := now.Add(-m.window)
	keep := m.samples[:0]
	for _, s := range m.samples {
		if !s.at.Before(cutoff) {
			keep = append(keep, s)
		}
	}
	m.samples = keep
}
