// Package stats holds the latency ledger that backs the final report
// (Component G) and a live rolling-progress monitor fed the same
// samples during long runs.
package stats

import "sort"

// Ledger accumulates one latency sample (in microseconds) per completed
// I/O. It is not safe for concurrent use; the engine loop is
// single-issuer, so every Record call happens on the same goroutine.
type Ledger struct {
	samples []float64
	sorted  bool
}

// NewLedger preallocates for an expected number of completions.
func NewLedger(capacity int) *Ledger {
	return &Ledger{samples: make([]float64, 0, capacity)}
}

// Record appends one latency sample in microseconds.
func (l *Ledger) Record(latencyUs float64) {
	l.samples = append(l.samples, latencyUs)
	l.sorted = false
}

// Len returns the number of recorded samples.
func (l *Ledger) Len() int { return len(l.samples) }

func (l *Ledger) ensureSorted() {
	if l.sorted {
		return
	}
	sort.Float64s(l.samples)
	l.sorted = true
}

// Min returns the smallest recorded latency, or 0 if the ledger is empty.
func (l *Ledger) Min() float64 {
	if len(l.samples) == 0 {
		return 0
	}
	l.ensureSorted()
	return l.samples[0]
}

// Max returns the largest recorded latency, or 0 if the ledger is empty.
func (l *Ledger) Max() float64 {
	if len(l.samples) == 0 {
		return 0
	}
	l.ensureSorted()
	return l.samples[len(l.samples)-1]
}

// Mean returns the arithmetic average of recorded latencies.
func (l *Ledger) Mean() float64 {
	if len(l.samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range l.samples {
		sum += s
	}
	return sum / float64(len(l.samples))
}

// Percentile returns the linear-interpolated percentile at position
// (p/100)*(n-1), weighting between the floor and ceiling neighbors by
// the fractional part — the exact law spec.md §4.G and §8 test against,
// not a bucketed approximation.
func (l *Ledger) Percentile(p float64) float64 {
	n := len(l.samples)
	if n == 0 {
		return 0
	}
	l.ensureSorted()
	if n == 1 {
		return l.samples[0]
	}

	i := p * float64(n-1) / 100
	lo := int(i)
	if lo >= n-1 {
		return l.samples[n-1]
	}
	f := i - float64(lo)
	return l.samples[lo]*(1-f) + l.samples[lo+1]*f
}
