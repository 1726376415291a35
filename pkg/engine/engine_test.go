package engine

import (
	"testing"
	"time"

	"github.com/adamsoliev/rio/pkg/bufpool"
	"github.com/adamsoliev/rio/pkg/lba"
	"github.com/adamsoliev/rio/pkg/ring"
)

func newTestEngine(t *testing.T, depth, blockSize int, params Params) (*Engine, *ring.MockRing) {
	t.Helper()
	pool, err := bufpool.New(depth, blockSize, 512)
	if err != nil {
		t.Fatalf("bufpool.New: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	mr := ring.NewMockRing(depth)
	gen := lba.New(1<<20, uint64(params.BlockLBAs))
	params.QueueDepth = depth
	params.BlockSize = blockSize
	e := New(mr, pool, gen, params)
	return e, mr
}

// Scenario 3 from spec.md §8: --type=randread --bs=4096 --iodepth=4
// --size=65536 issues 16 ops total.
func TestByteBudgetTermination(t *testing.T) {
	const blockSize = 4096
	params := Params{
		Workload:  RandRead,
		BlockLBAs: 1,
		LBASize:   blockSize,
		TotalOps:  65536 / blockSize,
	}
	e, _ := newTestEngine(t, 4, blockSize, params)

	res, err := e.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Completed != 16 || res.Submitted != 16 {
		t.Fatalf("completed=%d submitted=%d, want 16/16", res.Completed, res.Submitted)
	}
	if res.Ledger.Len() != 16 {
		t.Fatalf("ledger length=%d, want 16", res.Ledger.Len())
	}
}

func TestQueueDepthInvariant(t *testing.T) {
	const blockSize = 4096
	const depth = 8
	params := Params{
		Workload:  RandWrite,
		BlockLBAs: 1,
		LBASize:   blockSize,
		TotalOps:  int64(depth) * 10,
	}
	e, mr := newTestEngine(t, depth, blockSize, params)

	// MockRing completes synchronously at submit time, so len(pending)
	// after every submit/reap transition directly reflects in_flight; it
	// must never exceed depth.
	res, err := e.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Completed != res.Submitted {
		t.Fatalf("completed=%d != submitted=%d", res.Completed, res.Submitted)
	}
	if mr.Depth != depth {
		t.Fatalf("ring depth changed unexpectedly: %d", mr.Depth)
	}
}

func TestDurationTermination(t *testing.T) {
	const blockSize = 4096
	params := Params{
		Workload:  RandRead,
		BlockLBAs: 1,
		LBASize:   blockSize,
		Duration:  50 * time.Millisecond,
	}
	e, _ := newTestEngine(t, 4, blockSize, params)

	clockStart := time.Now()
	tick := clockStart
	callCount := 0
	e.SetClock(func() time.Time {
		callCount++
		// Advance past the deadline after enough calls that priming and a
		// few steady-state rounds have already happened, then freeze so
		// the drain tail is deterministic.
		if callCount > 40 {
			tick = clockStart.Add(60 * time.Millisecond)
		}
		return tick
	})

	res, err := e.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Elapsed < params.Duration {
		t.Fatalf("elapsed=%v, want >= %v", res.Elapsed, params.Duration)
	}
	if res.Completed != res.Submitted {
		t.Fatalf("completed=%d != submitted=%d at drain", res.Completed, res.Submitted)
	}
}

func TestIOFailurePropagates(t *testing.T) {
	const blockSize = 4096
	params := Params{
		Workload:  RandRead,
		BlockLBAs: 1,
		LBASize:   blockSize,
		TotalOps:  4,
	}
	e, mr := newTestEngine(t, 2, blockSize, params)
	mr.FailNext(0, -5)

	if _, err := e.Run(); err == nil {
		t.Fatal("expected an IOFailure, got nil")
	}
}
