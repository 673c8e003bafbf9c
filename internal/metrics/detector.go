// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics provides Prometheus metrics for the crashwatch detection
// pipeline: plain promauto counters/gauges/histograms with a small
// Record*/Set* wrapper API so callers never touch the prometheus client
// directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SampleAcceptedTotal counts accepted samples per channel.
	SampleAcceptedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashwatch_sample_accepted_total",
		Help: "Total number of accepted samples, by channel (accel/gps).",
	}, []string{"channel"})

	// SampleRejectedTotal counts out-of-order (rejected) samples per channel.
	SampleRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashwatch_sample_rejected_total",
		Help: "Total number of out-of-order rejected samples, by channel (accel/gps).",
	}, []string{"channel"})

	// CrashEventsTotal counts emitted crash results by type.
	CrashEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashwatch_crash_events_total",
		Help: "Total number of crash results emitted, by type (crash_imu_only/crash_gps).",
	}, []string{"type"})

	// BufferDepth tracks current buffer/queue sizes.
	BufferDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crashwatch_buffer_depth",
		Help: "Current number of entries held, by buffer/queue name.",
	}, []string{"buffer"})

	// ProcessIterations histograms how many ProcessUnit calls a single
	// ProcessToResult drain required, the cost of the cooperative
	// scheduling model.
	ProcessIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crashwatch_process_to_result_iterations",
		Help:    "Number of ProcessUnit iterations a single ProcessToResult call performed.",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
	})

	// AdmissionRejectedTotal counts ingest requests rejected by the CPU
	// pressure admission gate, by reason.
	AdmissionRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashwatch_admission_rejected_total",
		Help: "Total number of ingest requests rejected by the admission gate, by reason.",
	}, []string{"reason"})
)

// RecordSampleAccepted increments the accepted-sample counter for channel.
func RecordSampleAccepted(channel string) {
	SampleAcceptedTotal.WithLabelValues(channel).Inc()
}

// RecordSampleRejected increments the rejected-sample counter for channel.
func RecordSampleRejected(channel string) {
	SampleRejectedTotal.WithLabelValues(channel).Inc()
}

// RecordCrashEvent increments the crash-event counter for the given type.
func RecordCrashEvent(resultType string) {
	CrashEventsTotal.WithLabelValues(resultType).Inc()
}

// SetBufferDepth sets the gauge for a named buffer/queue.
func SetBufferDepth(buffer string, depth float64) {
	BufferDepth.WithLabelValues(buffer).Set(depth)
}

// ObserveProcessIterations records how many ProcessUnit calls one
// ProcessToResult drain took.
func ObserveProcessIterations(n int) {
	ProcessIterations.Observe(float64(n))
}

// RecordAdmissionRejected increments the admission-rejected counter for reason.
func RecordAdmissionRejected(reason string) {
	AdmissionRejectedTotal.WithLabelValues(reason).Inc()
}
