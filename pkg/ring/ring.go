// Package ring wraps the kernel io_uring submission/completion ring
// (Component C of the benchmark core). It hides the two distinct wire
// shapes a submission can take — a compact fixed-file/fixed-buffer
// read/write for the direct block-I/O path, and a wide URING_CMD entry
// carrying an embedded NVMe command for the passthrough path — behind one
// interface, per spec.md's design note to model them as variants of a sum
// type rather than shoehorning one into the other.
package ring

import (
	"errors"

	"github.com/adamsoliev/rio/pkg/rioerr"
)

// errUnsupportedOnPassthrough is returned by the direct-only methods of the
// passthrough backend, when a caller submits through the wrong half of the
// sum type.
var errUnsupportedOnPassthrough = errors.New("ring: operation not supported on this backend")

// SubmitDiscipline selects how pending submissions reach the kernel.
type SubmitDiscipline int

const (
	SubmitAndWait SubmitDiscipline = iota
	SplitSubmitWait
	SQPoll
)

// CompletionDiscipline selects how the ring is told to detect completions.
type CompletionDiscipline int

const (
	Interrupt CompletionDiscipline = iota
	IOPoll
)

// Config parameterizes ring construction. NewDirect registers FD as fixed
// file index 0; NewPassthrough does not register it and submits against the
// raw FD. The SQE/CQE shape is fixed by the constructor (NewPassthrough
// always uses the 128-byte SQE / 32-byte CQE shape needed to embed an NVMe
// command); neither constructor reads Passthrough.
type Config struct {
	Depth       int
	FD          int32
	Passthrough bool
	Submit      SubmitDiscipline
	Completion  CompletionDiscipline
}

// FeatureFlags computes the io_uring setup flags for a given (submit,
// completion) pair per spec.md §4.C's selection matrix. Exported so tests
// can assert the matrix directly without touching a real ring. Only the
// direct backend applies it; the passthrough backend does not call Select.
type FeatureFlags struct {
	SQPoll           bool
	SQThreadIdleMs   int
	IOPoll           bool
	SingleIssuer     bool
	DeferredTaskRun  bool
}

// Select implements the feature-selection matrix from spec.md §4.C.
// io-poll and deferred-task-run are mutually exclusive (spec.md §9): when
// polling is requested the deferred-task-run hint is omitted rather than
// rejected, since io-poll dominates for hot-path completion detection.
func Select(submit SubmitDiscipline, completion CompletionDiscipline) FeatureFlags {
	iopoll := completion == IOPoll
	switch submit {
	case SQPoll:
		return FeatureFlags{
			SQPoll:         true,
			SQThreadIdleMs: 2000,
			IOPoll:         iopoll,
			SingleIssuer:   true,
		}
	default: // SubmitAndWait, SplitSubmitWait
		return FeatureFlags{
			IOPoll:          iopoll,
			SingleIssuer:    true,
			DeferredTaskRun: !iopoll,
		}
	}
}

// Completion is one reaped completion event: the buffer-index user-tag
// stamped at submission time, and the kernel result (negative on error).
type Completion struct {
	UserData uint64
	Res      int32
}

// Ring is the interface the engine loop and submission builders consume.
// Every method below is called from the single issuer thread only; there
// is no internal locking.
type Ring interface {
	// RegisterBuffers registers the buffer pool as a fixed-buffer set.
	// Only meaningful (and only called) for the direct-I/O backend —
	// passthrough submissions carry a raw address and never touch
	// registered buffers (spec.md §4.D).
	RegisterBuffers(bufs [][]byte) error

	// SubmitReadDirect / SubmitWriteDirect build a fixed-file,
	// fixed-buffer read or write at byte offset off, length len(buf),
	// stamping bufIndex as the completion user-tag.
	SubmitReadDirect(bufIndex int, buf []byte, off uint64) error
	SubmitWriteDirect(bufIndex int, buf []byte, off uint64) error

	// SubmitReadPassthrough / SubmitWritePassthrough build a URING_CMD
	// entry embedding an NVMe I/O command that reads/writes blockLBAs
	// logical blocks starting at lba, stamping bufIndex as the
	// completion user-tag.
	SubmitReadPassthrough(bufIndex int, buf []byte, nsid uint32, lba uint64, blockLBAs uint32, lbaSize uint32) error
	SubmitWritePassthrough(bufIndex int, buf []byte, nsid uint32, lba uint64, blockLBAs uint32, lbaSize uint32) error

	// Flush performs a submission-ring tail flush without blocking. In
	// sq-poll mode this is the sole place a wakeup/memory-barrier is
	// needed (spec.md §4.F Phase 1); in other disciplines it is folded
	// into Wait.
	Flush() error

	// Wait blocks until at least one completion is available, applying
	// the discipline-specific submit/wait call from spec.md §4.F Phase
	// 2 step 1, and returns exactly one completion.
	Wait() (Completion, error)

	// TryNext returns an already-ready completion without blocking, or
	// ok=false if none is currently available. Used to drain every
	// ready completion after a single blocking Wait, matching spec.md's
	// "iterate all ready completion entries without advancing... then
	// advance by the number processed" phrasing without exposing the
	// raw ring head/tail to callers.
	TryNext() (c Completion, ok bool)

	// Close tears the ring down.
	Close() error
}

// wrapQueueFull turns a backend-reported "no free SQE" condition into the
// engine-invariant QueueFullError from spec.md §7. A correctly operating
// engine never triggers it since in_flight < depth is an invariant it
// maintains; if reached, it means that invariant broke.
func wrapQueueFull(depth int) error {
	return &rioerr.QueueFullError{Depth: depth}
}
