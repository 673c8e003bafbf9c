package detector

import "fmt"

// gpsVerifier evaluates the GPS post-verification gates in order; any
// gate failure returns NONE without popping the candidate,
// except the de-duplication gate (5), which pops and returns NONE with
// MoreWork set. Once
// all gates pass, the candidate is popped regardless of the low-speed
// criterion's verdict.
func (d *Detector) gpsVerifier() Result {
	// Gate 1: a candidate exists.
	if len(d.potentialCrashQueue) == 0 {
		return Result{}
	}
	c := d.potentialCrashQueue[0]

	// Gate 2: enough GPS points accumulated (vacuous at the reference
	// default of 0, kept configurable for sparser-GPS deployments).
	if d.gpsBuf.size() < d.cfg.MinimumGPSPointsInWindow {
		return Result{}
	}

	// Gate 3: GPS buffer spans at least the required coverage window.
	if d.gpsBuf.empty() || d.gpsBuf.back().T-d.gpsBuf.front().T < d.cfg.GPSWindowTime {
		return Result{}
	}

	// Gate 4: enough time has elapsed since the candidate for the buffer's
	// oldest sample to represent post-event speed.
	if d.gpsBuf.front().T < c.T+d.cfg.GPSDelayTime {
		d.logf(SeverityVerbose, "verifier", "gps window has not reached the desired offset")
		return Result{}
	}

	// Gate 5: de-duplication. A prior crash within the minimum spacing
	// drops this candidate without evaluating GPS speed.
	if d.dedup.crashDetected && c.T < d.dedup.tLastCrash+d.cfg.MinimumTimeBetweenCrashes {
		d.logf(SeverityVerbose, "verifier", "not enough time has elapsed since last crash")
		d.potentialCrashQueue = d.potentialCrashQueue[1:]
		return Result{MoreWork: true}
	}

	result := Result{MoreWork: true}

	if d.lowSpeedInGPSWindow() {
		d.dedup.crashDetected = true
		d.dedup.tLastCrash = c.T
		d.dedup.magnitudeLastCrash = c.V
		d.latestResult = CrashResult{T: c.T, V: c.V}
		result.Type = ResultCrashGPS
		d.logf(SeverityInfo, "verifier", fmt.Sprintf("confirmed crash at t=%.3f mag=%.3f", c.T, c.V))
	} else {
		d.logf(SeverityVerbose, "verifier", "no crash, due to GPS speed post processing")
	}

	d.potentialCrashQueue = d.potentialCrashQueue[1:]
	return result
}

// lowSpeedInGPSWindow scans the GPS buffer front-to-back, counting
// consecutive samples strictly above the speed threshold. A momentary
// spike (urban multipath) resets the count rather than failing the
// criterion outright; only a run reaching
// GPSConsecutiveOverSpeedReject fails it.
func (d *Detector) lowSpeedInGPSWindow() bool {
	var consecutive int
	for _, s := range d.gpsBuf.all() {
		if s.V > d.cfg.GPSSpeedThreshold {
			consecutive++
			d.logf(SeverityVerbose, "verifier", fmt.Sprintf("gps_speed=%.3f at t=%.3f", s.V, s.T))
		} else {
			consecutive = 0
		}
		if consecutive >= d.cfg.GPSConsecutiveOverSpeedReject {
			return false
		}
	}
	return true
}
