package detector

// dedupState is the de-duplication record: set on every confirmed
// CRASH_GPS and consulted by the GPS verifier's gate 5.
type dedupState struct {
	crashDetected      bool
	tLastCrash         float64
	magnitudeLastCrash float64
}

// Detector is the crash-detection pipeline: two ingress ports, a
// threshold pre-filter, a spline-resampled window extractor, an IMU
// classifier stage, a GPS verifier, and the cooperative scheduler tying
// them together. It is not reentrant and not internally synchronized;
// callers sharing an instance across goroutines must serialize access
// externally.
type Detector struct {
	cfg        Config
	classifier Classifier
	log        LogFunc
	mode       Mode

	accelBuf *timeBuffer
	gpsBuf   *timeBuffer

	overThresholdQueue  []Sample
	windowQueue         [][]Sample
	potentialCrashQueue []Sample

	previousThresholdedT float64

	latestResult CrashResult
	dedup        dedupState
	counters     Counters
}

// Option configures a Detector at construction time.
type Option func(*Detector)

// WithLogFunc installs the logging callback collaborator.
func WithLogFunc(fn LogFunc) Option {
	return func(d *Detector) {
		if fn != nil {
			d.log = fn
		}
	}
}

// WithClassifier replaces the reference peak-threshold classifier with
// another implementation of the Classifier contract (e.g. a learned
// model wrapper).
func WithClassifier(c Classifier) Option {
	return func(d *Detector) {
		if c != nil {
			d.classifier = c
		}
	}
}

// New creates a detector instance with all buffers and counters empty.
// There is no persistence across instances and no teardown hook.
func New(cfg Config, opts ...Option) *Detector {
	d := &Detector{
		cfg:        cfg,
		classifier: PeakThresholdClassifier{Threshold: cfg.CrashThreshold},
		log:        nopLog,
		mode:       ModeOn,
		accelBuf:   newTimeBuffer(cfg.AccelBufferSpanBound()),
		gpsBuf:     newTimeBuffer(cfg.GPSBufferSpanBound()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// logf forwards to the logging callback, except that Verbose-level traces
// are only emitted in DEBUG mode: ON runs a silent pipeline, DEBUG
// additionally surfaces the stage-transition traces.
func (d *Detector) logf(sev Severity, tag, msg string) {
	if sev == SeverityVerbose && d.mode != ModeDebug {
		return
	}
	d.log(sev, tag, msg)
}

// AddAccelerometer ingests one accelerometer sample. If the buffer is
// empty or t is strictly greater than the newest sample's timestamp, it is
// appended and oldest entries are evicted until the span invariant holds;
// otherwise the out-of-order counter is incremented and false is returned
// with no state mutation.
func (d *Detector) AddAccelerometer(t, v float64) bool {
	if d.accelBuf.add(t, v) {
		d.counters.AccelAccepted++
		return true
	}
	d.counters.AccelOutOfOrder++
	return false
}

// AddGPS ingests one GPS sample, with the same ordering rules as
// AddAccelerometer.
func (d *Detector) AddGPS(t, v float64) bool {
	if d.gpsBuf.add(t, v) {
		d.counters.GPSAccepted++
		return true
	}
	d.counters.GPSOutOfOrder++
	return false
}

// GetCrashResult reads the latest emitted {t, magnitude} record,
// overwritten on every CRASH_IMU_ONLY or CRASH_GPS emission.
func (d *Detector) GetCrashResult() CrashResult {
	return d.latestResult
}

// SetMode sets the detector's off/on/debug mode.
func (d *Detector) SetMode(m Mode) {
	d.mode = m
}

// Mode returns the detector's current mode.
func (d *Detector) Mode() Mode {
	return d.mode
}

// Counters returns the accepted/out-of-order sample counts per channel.
// Bookkeeping only; not consulted by any detection logic.
func (d *Detector) Counters() Counters {
	return d.counters
}

// QueueDepths reports the current length of each internal queue.
// Bookkeeping only, for external observability; not consulted by any
// detection logic.
type QueueDepths struct {
	OverThreshold  int
	Window         int
	PotentialCrash int
}

// QueueDepths returns the current depth of the over-threshold, window, and
// potential-crash queues.
func (d *Detector) QueueDepths() QueueDepths {
	return QueueDepths{
		OverThreshold:  len(d.overThresholdQueue),
		Window:         len(d.windowQueue),
		PotentialCrash: len(d.potentialCrashQueue),
	}
}

// SetConfig swaps in a new set of tunable constants, updating the
// buffers' span bounds in place and, if the classifier was never
// replaced via WithClassifier, the default classifier's threshold. It
// does not reset any buffered samples or queued candidates.
func (d *Detector) SetConfig(cfg Config) {
	d.cfg = cfg
	d.accelBuf.setSpan(cfg.AccelBufferSpanBound())
	d.gpsBuf.setSpan(cfg.GPSBufferSpanBound())
	if pt, ok := d.classifier.(PeakThresholdClassifier); ok {
		pt.Threshold = cfg.CrashThreshold
		d.classifier = pt
	}
}
