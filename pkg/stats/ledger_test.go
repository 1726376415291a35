package stats

import "testing"

// Percentile fixture from spec.md §8.
func TestLedgerPercentileFixture(t *testing.T) {
	l := NewLedger(10)
	for _, v := range []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
		l.Record(v)
	}

	if got := l.Percentile(50); got != 5.5 {
		t.Errorf("p50 = %v, want 5.5", got)
	}
	if got := l.Percentile(95); got != 9.55 {
		t.Errorf("p95 = %v, want 9.55", got)
	}
	if got := l.Percentile(99); got != 9.91 {
		t.Errorf("p99 = %v, want 9.91", got)
	}
	if got := l.Min(); got != 1 {
		t.Errorf("min = %v, want 1", got)
	}
	if got := l.Max(); got != 10 {
		t.Errorf("max = %v, want 10", got)
	}
	if got := l.Mean(); got != 5.5 {
		t.Errorf("mean = %v, want 5.5", got)
	}
}

func TestLedgerUnsortedInput(t *testing.T) {
	l := NewLedger(5)
	for _, v := range []float64{5, 1, 4, 2, 3} {
		l.Record(v)
	}
	if got := l.Min(); got != 1 {
		t.Errorf("min = %v, want 1", got)
	}
	if got := l.Max(); got != 5 {
		t.Errorf("max = %v, want 5", got)
	}
	if got := l.Percentile(50); got != 3 {
		t.Errorf("p50 = %v, want 3", got)
	}
}

func TestLedgerEmpty(t *testing.T) {
	l := NewLedger(0)
	if l.Min() != 0 || l.Max() != 0 || l.Mean() != 0 || l.Percentile(50) != 0 {
		t.Error("empty ledger should report zero for all statistics")
	}
}

func TestLedgerSingleSample(t *testing.T) {
	l := NewLedger(1)
	l.Record(42)
	if got := l.Percentile(99); got != 42 {
		t.Errorf("p99 = %v, want 42", got)
	}
}
