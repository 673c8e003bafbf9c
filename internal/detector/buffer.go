package detector

// timeBuffer is an ordered, strictly-increasing-in-T sequence of samples
// bounded by a time-span invariant, evicting the oldest entries once the
// span is exceeded.
type timeBuffer struct {
	samples []Sample
	span    float64
}

func newTimeBuffer(span float64) *timeBuffer {
	return &timeBuffer{span: span}
}

// add appends v at t if the buffer is empty or t is strictly greater than
// the newest sample, then evicts from the front until the span invariant
// holds. Returns false (and mutates nothing) for an out-of-order sample.
func (b *timeBuffer) add(t, v float64) bool {
	if len(b.samples) > 0 && t <= b.samples[len(b.samples)-1].T {
		return false
	}
	b.samples = append(b.samples, Sample{T: t, V: v})
	b.evict()
	return true
}

// setSpan updates the span invariant and immediately evicts any now-stale
// entries.
func (b *timeBuffer) setSpan(span float64) {
	b.span = span
	if !b.empty() {
		b.evict()
	}
}

func (b *timeBuffer) evict() {
	for b.back().T-b.front().T > b.span {
		b.samples = b.samples[1:]
	}
}

func (b *timeBuffer) empty() bool { return len(b.samples) == 0 }

func (b *timeBuffer) front() Sample { return b.samples[0] }

func (b *timeBuffer) back() Sample { return b.samples[len(b.samples)-1] }

func (b *timeBuffer) size() int { return len(b.samples) }

// all returns the buffer's samples in time order. Callers must not mutate
// the returned slice's elements in a way that breaks ordering; the slice
// itself is shared with the buffer's internal storage.
func (b *timeBuffer) all() []Sample { return b.samples }
