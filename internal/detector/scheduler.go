package detector

// ProcessUnit runs, in order, the threshold pre-filter, the window
// extractor, and one iteration of the IMU classifier stage. If that
// iteration yielded a non-NONE result or signaled more work, it is
// returned immediately. Otherwise one iteration of the GPS verifier
// runs and its result is returned.
func (d *Detector) ProcessUnit() Result {
	if d.mode == ModeOff {
		return Result{}
	}

	d.thresholdPreFilter()
	d.windowExtractor()

	r := d.imuClassifierStage()
	if r.MoreWork || r.Type != ResultNone {
		return r
	}

	return d.gpsVerifier()
}

// ProcessToResult repeatedly invokes ProcessUnit while more work remains
// and no crash has been emitted, returning when either a crash surfaces or
// the pipeline drains.
func (d *Detector) ProcessToResult() Result {
	result := Result{MoreWork: true}
	for result.MoreWork && result.Type == ResultNone {
		result = d.ProcessUnit()
	}
	return result
}
