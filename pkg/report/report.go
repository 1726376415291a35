// Package report formats the final run statistics to stdout, Component I,
// a collaborator outside the benchmark core.
package report

import (
	"fmt"
	"io"

	"github.com/adamsoliev/rio/pkg/engine"
)

// Write prints the final statistics report for res to w, per spec.md
// §4.G: IOPS = completed/elapsed; bandwidth in base-2 mebibytes/sec;
// min/max/mean/p50/p95/p99 from the exact sorted ledger.
func Write(w io.Writer, res *engine.Result, blockSize int) {
	elapsedSec := res.Elapsed.Seconds()
	iops := float64(res.Completed) / elapsedSec
	bandwidthMiBps := float64(res.Completed*int64(blockSize)) / (elapsedSec * (1 << 20))

	l := res.Ledger
	fmt.Fprintf(w, "completed: %d\n", res.Completed)
	fmt.Fprintf(w, "elapsed: %.3fs\n", elapsedSec)
	fmt.Fprintf(w, "iops: %.1f\n", iops)
	fmt.Fprintf(w, "bandwidth: %.2f MiB/s\n", bandwidthMiBps)
	fmt.Fprintf(w, "latency (us): min=%.1f avg=%.1f p50=%.1f p95=%.1f p99=%.1f max=%.1f\n",
		l.Min(), l.Mean(), l.Percentile(50), l.Percentile(95), l.Percentile(99), l.Max())
}
