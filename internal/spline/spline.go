// Package spline implements a cubic spline interpolator: given a strictly
// increasing vector of knots x_i and values y_i, it produces a function f
// that is C2 across the interior and interpolates the knots exactly.
// Evaluation outside [x0, xn] is undefined by contract and is the caller's
// responsibility to avoid.
//
// No third-party numerical library provides cubic spline interpolation
// (no gonum or equivalent dependency is wired anywhere in this module);
// this is a small, self-contained numerical routine implementing the
// textbook natural-cubic-spline algorithm (Thomas-algorithm solve of the
// tridiagonal second-derivative system).
package spline

import "fmt"

// Natural is a natural cubic spline: second derivatives at the two
// endpoints are zero. It interpolates exactly at each knot and is C2 on the
// interior.
type Natural struct {
	x, y []float64
	// m holds the quadratic coefficient at each knot (half the second
	// derivative there), solved once at construction time.
	m []float64
}

// Fit builds a natural cubic spline through the given knots. x must be
// strictly increasing and len(x) == len(y) >= 2.
func Fit(x, y []float64) (*Natural, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("spline: len(x)=%d != len(y)=%d", n, len(y))
	}
	if n < 2 {
		return nil, fmt.Errorf("spline: need at least 2 knots, got %d", n)
	}
	for i := 1; i < n; i++ {
		if x[i] <= x[i-1] {
			return nil, fmt.Errorf("spline: x must be strictly increasing at index %d (%v <= %v)", i, x[i], x[i-1])
		}
	}

	xs := append([]float64(nil), x...)
	ys := append([]float64(nil), y...)

	if n == 2 {
		return &Natural{x: xs, y: ys, m: []float64{0, 0}}, nil
	}

	h := make([]float64, n-1)
	for i := range h {
		h[i] = xs[i+1] - xs[i]
	}

	// Tridiagonal system for interior second derivatives, solved by
	// Thomas algorithm. Endpoints pinned to 0 (natural boundary).
	alpha := make([]float64, n)
	for i := 1; i < n-1; i++ {
		alpha[i] = 3*(ys[i+1]-ys[i])/h[i] - 3*(ys[i]-ys[i-1])/h[i-1]
	}

	l := make([]float64, n)
	mu := make([]float64, n)
	z := make([]float64, n)
	l[0] = 1
	for i := 1; i < n-1; i++ {
		l[i] = 2*(xs[i+1]-xs[i-1]) - h[i-1]*mu[i-1]
		mu[i] = h[i] / l[i]
		z[i] = (alpha[i] - h[i-1]*z[i-1]) / l[i]
	}
	l[n-1] = 1

	c := make([]float64, n)
	for i := n - 2; i >= 0; i-- {
		c[i] = z[i] - mu[i]*c[i+1]
	}

	return &Natural{x: xs, y: ys, m: c}, nil
}

// Eval evaluates the spline at t. Behavior outside [x[0], x[n-1]] is
// undefined by contract; here it clamps to the nearest interior segment's
// polynomial rather than panicking, since a panic inside the hot detector
// path would break the pipeline's never-aborts propagation policy. Callers
// must never rely on this clamping and must check bracketing beforehand.
func (s *Natural) Eval(t float64) float64 {
	i := s.segment(t)

	h := s.x[i+1] - s.x[i]
	a := s.y[i]
	b := (s.y[i+1]-s.y[i])/h - h*(2*s.m[i]+s.m[i+1])/3
	c := s.m[i]
	d := (s.m[i+1] - s.m[i]) / (3 * h)

	dt := t - s.x[i]
	return a + b*dt + c*dt*dt + d*dt*dt*dt
}

// segment returns the index i such that x[i] <= t <= x[i+1], clamping to
// the first or last segment if t falls outside the knot range.
func (s *Natural) segment(t float64) int {
	n := len(s.x)
	if t <= s.x[0] {
		return 0
	}
	if t >= s.x[n-1] {
		return n - 2
	}
	lo, hi := 0, n-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.x[mid] <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
