package detector

import "fmt"

// imuClassifierStage pops the oldest window off the window queue, runs it
// through calculateVariableWindow (currently identity) and the classifier,
// and on a positive verdict records the peak sample as the latest result
// and pushes the window's last sample (not the peak) onto the
// potential-crash queue for GPS verification. Returns a Result whose
// MoreWork is true iff the window queue is non-empty after the pop.
func (d *Detector) imuClassifierStage() Result {
	if len(d.windowQueue) == 0 {
		return Result{}
	}

	fixed := d.windowQueue[0]
	variable := calculateVariableWindow(fixed)

	verdict, peak := d.classifier.Classify(variable)

	if verdict == ResultCrashIMUOnly {
		d.logf(SeverityVerbose, "classifier", fmt.Sprintf("possible crash at t=%.3f mag=%.3f", peak.T, peak.V))
		d.latestResult = CrashResult{T: peak.T, V: peak.V}
		last := variable[len(variable)-1]
		d.potentialCrashQueue = append(d.potentialCrashQueue, last)
	} else {
		d.logf(SeverityVerbose, "classifier", "no crash, no problem")
	}

	d.windowQueue = d.windowQueue[1:]

	return Result{
		MoreWork: len(d.windowQueue) > 0,
		Type:     verdict,
	}
}
