// Package engine implements the benchmark core's state machine
// (Component F): prime the ring to queue depth, then for every
// completion record its latency and decide whether to reissue, until the
// run's termination condition fires and the ring drains.
//
// Grounded on the reference pack's pkg/engine/uring.go worker loop
// (prime-then-steady-state structure, time.Since latency capture,
// cqe.UserData round trip through a fixed slot table) but reduced from
// that file's multi-worker token-bucket design to the single-issuer,
// single-queue-depth-window loop spec.md describes — rio never issues
// from more than one goroutine.
package engine

import (
	"time"

	"github.com/adamsoliev/rio/pkg/bufpool"
	"github.com/adamsoliev/rio/pkg/lba"
	"github.com/adamsoliev/rio/pkg/ring"
	"github.com/adamsoliev/rio/pkg/rioerr"
	"github.com/adamsoliev/rio/pkg/stats"
	"github.com/adamsoliev/rio/pkg/submit"
)

// Engine runs one benchmark against an already-open ring and buffer
// pool. It holds no ownership over either — callers open and close them.
type Engine struct {
	ring    ring.Ring
	pool    *bufpool.Pool
	gen     *lba.Generator
	params  Params
	monitor *stats.LiveMonitor
	now     func() time.Time
}

// New builds an Engine. gen must produce LBAs valid for params' geometry.
func New(r ring.Ring, pool *bufpool.Pool, gen *lba.Generator, params Params) *Engine {
	return &Engine{ring: r, pool: pool, gen: gen, params: params, now: time.Now}
}

// SetMonitor attaches a live rolling-progress monitor. Optional; nil by
// default, in which case the loop does no per-completion display work.
func (e *Engine) SetMonitor(m *stats.LiveMonitor) { e.monitor = m }

// SetClock overrides the engine's time source. Test-only hook: the
// duration-mode termination scenarios in spec.md §8 need a controllable
// clock to assert `elapsed >= T` without an actual multi-second sleep.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Run executes the two-phase loop described in spec.md §4.F and returns
// the completed run's ledger and totals. The only error it can return
// (short of a ring failure) is an rioerr.IOFailure from a completion with
// a negative result field, per the fatal-only propagation policy.
func (e *Engine) Run() (*Result, error) {
	depth := e.params.QueueDepth
	slotSubmitTime := make([]time.Time, depth)

	var submitted, completed int64
	var inFlight int

	start := e.now()
	var deadline time.Time
	byteBudget := e.params.IsByteBudget()
	if !byteBudget {
		deadline = start.Add(e.params.Duration)
	}

	ledgerCap := int(e.params.TotalOps)
	if ledgerCap <= 0 {
		ledgerCap = 4096
	}
	ledger := stats.NewLedger(ledgerCap)

	issuanceAllowed := func() bool {
		if byteBudget {
			return submitted < e.params.TotalOps
		}
		return e.now().Before(deadline)
	}

	issue := func(slot int) error {
		l := e.gen.Next()
		buf := e.pool.Slot(slot)
		slotSubmitTime[slot] = e.now()

		var err error
		switch {
		case e.params.Passthrough && e.params.Workload == RandRead:
			err = submit.ReadPassthrough(e.ring, slot, buf, e.geometry(), l)
		case e.params.Passthrough:
			err = submit.WritePassthrough(e.ring, slot, buf, e.geometry(), l)
		case e.params.Workload == RandRead:
			err = submit.ReadDirect(e.ring, slot, buf, l, e.params.LBASize)
		default:
			err = submit.WriteDirect(e.ring, slot, buf, l, e.params.LBASize)
		}
		if err != nil {
			return err
		}
		submitted++
		inFlight++
		return nil
	}

	// Phase 1: prime.
	for inFlight < depth && issuanceAllowed() {
		if err := issue(inFlight); err != nil {
			return nil, err
		}
	}
	if err := e.ring.Flush(); err != nil {
		return nil, err
	}

	process := func(c ring.Completion) error {
		if c.Res < 0 {
			return &rioerr.IOFailure{Errno: c.Res}
		}
		slot := int(c.UserData)
		// Duration.Microseconds() truncates to an integer via internal
		// /1e3 division; spec.md §4.F wants nanosecond precision carried
		// through as a double, so divide the nanosecond count ourselves.
		latencyUs := float64(e.now().Sub(slotSubmitTime[slot]).Nanoseconds()) / 1000.0
		ledger.Record(latencyUs)
		if e.monitor != nil {
			e.monitor.Record(int64(latencyUs))
			e.monitor.Tick(e.now())
		}
		completed++
		inFlight--

		reissue := false
		if byteBudget {
			reissue = submitted < e.params.TotalOps
		} else {
			reissue = e.now().Before(deadline)
		}
		if reissue {
			return issue(slot)
		}
		return nil
	}

	// Phase 2: steady state.
	for inFlight > 0 || (byteBudget && completed < e.params.TotalOps) {
		c, err := e.ring.Wait()
		if err != nil {
			return nil, err
		}
		if err := process(c); err != nil {
			return nil, err
		}
		for {
			c, ok := e.ring.TryNext()
			if !ok {
				break
			}
			if err := process(c); err != nil {
				return nil, err
			}
		}
	}

	return &Result{
		Completed: completed,
		Submitted: submitted,
		Elapsed:   e.now().Sub(start),
		Ledger:    ledger,
	}, nil
}

func (e *Engine) geometry() submit.Geometry {
	return submit.Geometry{
		Nsid:      e.params.Nsid,
		LBASize:   e.params.LBASize,
		BlockLBAs: e.params.BlockLBAs,
	}
}
