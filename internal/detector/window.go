package detector

import (
	"fmt"

	"github.com/crashwatch/crashwatch/internal/spline"
)

// thresholdPreFilter scans accelerometer samples newer than
// d.previousThresholdedT in timestamp order, pushes those exceeding the
// pre-threshold onto the over-threshold queue, and advances
// previousThresholdedT regardless, guaranteeing each sample is examined at
// most once.
func (d *Detector) thresholdPreFilter() {
	if d.accelBuf.empty() {
		return
	}
	if d.accelBuf.back().T <= d.previousThresholdedT {
		return
	}

	samples := d.accelBuf.all()
	start := 0
	for i, s := range samples {
		if s.T > d.previousThresholdedT {
			start = i
			break
		}
	}

	for _, s := range samples[start:] {
		if s.V > d.cfg.PreprocessingThreshold {
			d.overThresholdQueue = append(d.overThresholdQueue, s)
			d.logf(SeverityVerbose, "prefilter", fmt.Sprintf("sample t=%.3f v=%.3f over threshold, queued", s.T, s.V))
		}
		d.previousThresholdedT = s.T
	}
}

// windowExtractor handles the oldest over-threshold candidate: either
// discard it (buffer has aged past the required left
// edge), stop (not enough future data yet), or build a fixed-rate spline
// window and push it onto the window queue. It drains every candidate
// that can be resolved in one pass, stopping only when the oldest
// remaining candidate needs more future data.
func (d *Detector) windowExtractor() {
	for len(d.overThresholdQueue) > 0 {
		p := d.overThresholdQueue[0]

		if d.accelBuf.empty() {
			return
		}

		if p.T-d.cfg.IMUHalfWindow < d.accelBuf.front().T {
			d.logf(SeverityVerbose, "extractor", fmt.Sprintf("candidate t=%.3f aged out of buffer, discarding", p.T))
			d.overThresholdQueue = d.overThresholdQueue[1:]
			continue
		}

		if p.T+d.cfg.IMUHalfWindow > d.accelBuf.back().T {
			return
		}

		window, err := d.buildFixedWindow(p.T)
		if err != nil {
			d.logf(SeverityError, "extractor", fmt.Sprintf("failed to build window for t=%.3f: %v", p.T, err))
			d.overThresholdQueue = d.overThresholdQueue[1:]
			continue
		}

		d.windowQueue = append(d.windowQueue, window)
		d.logf(SeverityVerbose, "extractor", fmt.Sprintf("window built for t=%.3f, %d samples", p.T, len(window)))
		d.overThresholdQueue = d.overThresholdQueue[1:]
	}
}

// buildFixedWindow fits a cubic spline to the entire current accelerometer
// buffer and samples it at center-half_window, center-half_window+1/fs, ...
// up to and including center+half_window. A fresh fit per candidate is
// deliberate: the buffer changes between candidates and refitting is
// cheap at the buffer's O(20-sample) size.
func (d *Detector) buildFixedWindow(center float64) ([]Sample, error) {
	buf := d.accelBuf.all()
	xs := make([]float64, len(buf))
	ys := make([]float64, len(buf))
	for i, s := range buf {
		xs[i] = s.T
		ys[i] = s.V
	}

	fit, err := spline.Fit(xs, ys)
	if err != nil {
		return nil, err
	}

	start := center - d.cfg.IMUHalfWindow
	end := center + d.cfg.IMUHalfWindow
	step := 1.0 / d.cfg.IMUSamplingFrequency

	// Inclusive upper bound under monotone accumulation: the final sample
	// is included if floating-point drift leaves it within epsilon of end.
	const eps = 1e-9
	var window []Sample
	for t := start; t <= end+eps; t += step {
		window = append(window, Sample{T: t, V: fit.Eval(t)})
	}
	return window, nil
}

// calculateVariableWindow is the adaptive-window seam: a named extension
// point for a future adaptive post-processing stage that currently just
// returns its input unchanged.
func calculateVariableWindow(fixed []Sample) []Sample {
	return fixed
}
