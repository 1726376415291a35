package stats

import (
	"fmt"
	"os"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// LiveMonitor prints a rolling IOPS/latency line to stderr at a fixed
// tick interval during long (duration-mode) runs. It is fed the same
// latency samples the Ledger records, but its bucketed HDR histogram is
// never the source of the final report — the Ledger's exact sorted
// samples are (see Percentile). Grounded on the reference benchmark's
// libaio engine, which records every completion's microsecond latency
// into an hdrhistogram.Histogram during the hot loop.
type LiveMonitor struct {
	hist     *hdrhistogram.Histogram
	interval time.Duration
	lastTick time.Time
	lastOps  int64
	ops      int64
	out      *os.File
}

// NewLiveMonitor builds a monitor ticking every interval. The histogram
// range (1us to 1 hour, 3 significant figures) matches the reference
// engine's configuration.
func NewLiveMonitor(interval time.Duration) *LiveMonitor {
	return &LiveMonitor{
		hist:     hdrhistogram.New(1, 3600000000, 3),
		interval: interval,
		lastTick: time.Now(),
		out:      os.Stderr,
	}
}

// Record feeds one completion's latency in microseconds into the rolling
// histogram and bumps the completion counter.
func (m *LiveMonitor) Record(latencyUs int64) {
	_ = m.hist.RecordValue(latencyUs)
	m.ops++
}

// Tick prints a progress line if at least one interval has elapsed since
// the last tick, and resets the per-interval counters. Callers invoke it
// once per steady-state loop iteration; it is a no-op between ticks.
func (m *LiveMonitor) Tick(now time.Time) {
	elapsed := now.Sub(m.lastTick)
	if elapsed < m.interval {
		return
	}
	deltaOps := m.ops - m.lastOps
	iops := float64(deltaOps) / elapsed.Seconds()
	fmt.Fprintf(m.out, "iops=%.0f p50=%dus p99=%dus\n",
		iops, m.hist.ValueAtQuantile(50), m.hist.ValueAtQuantile(99))
	m.lastTick = now
	m.lastOps = m.ops
	m.hist.Reset()
}
