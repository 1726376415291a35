package engine

import (
	"time"

	"github.com/adamsoliev/rio/pkg/stats"
)

// Workload selects which submission builder the engine calls each time it
// (re)issues an operation.
type Workload int

const (
	RandRead Workload = iota
	RandWrite
)

// Params is the immutable configuration the engine loop consumes. It is
// the subset of config.RunConfig the loop needs, plus the device
// geometry resolved at open time — kept separate from config.RunConfig so
// this package doesn't need to import cmd-level wiring concerns.
type Params struct {
	Workload    Workload
	QueueDepth  int
	BlockSize   int
	Nsid        uint32
	LBASize     uint32
	NLBA        uint64
	BlockLBAs   uint32
	Passthrough bool

	// Exactly one of TotalOps or Duration is set, mirroring spec.md §3's
	// "exactly one of B, T is non-zero" invariant, already enforced by
	// config.RunConfig.Validate before this struct is built.
	TotalOps int64
	Duration time.Duration
}

// IsByteBudget reports whether the run terminates on TotalOps rather than
// on Duration.
func (p Params) IsByteBudget() bool { return p.TotalOps > 0 }

// Result is the final report handed to pkg/report: the exact ledger plus
// the run-level totals needed for IOPS and bandwidth.
type Result struct {
	Completed int64
	Submitted int64
	Elapsed   time.Duration
	Ledger    *stats.Ledger
}
