package ring

import (
	"unsafe"

	"github.com/iceber/iouring-go"
	iosys "github.com/iceber/iouring-go/syscall"

	"github.com/adamsoliev/rio/pkg/rioerr"
)

// passthroughRing implements Ring for the NVMe character-device
// passthrough path using iceber/iouring-go, in the idiom the reference
// pack's ublk server uses to carry an embedded kernel command inside an
// enlarged SQE: WithSQE128/WithCQE32 plus a PrepRequest closure that
// writes straight into the SQE's command area via sqe.CMD(...).
//
// Each submission's completion arrives on its own one-slot channel handed
// to the library;
// a short-lived forwarding goroutine tags the result with the slot index
// and feeds it into one shared channel so Wait/TryNext can reap in the
// order the kernel actually completes them, exactly as spec.md's engine
// loop requires.
type passthroughRing struct {
	ring    *iouring.IOURing
	fd      int32
	depth   int
	results chan passCompletion
}

type passCompletion struct {
	bufIndex int
	res      int32
	err      error
}

// NewPassthrough constructs a ring for the NVMe passthrough path. NVMe
// command passthrough only works with the SQE128/CQE32 entry shapes; the
// finer submit/completion discipline knobs Select reports (sq-poll,
// io-poll, single-issuer, deferred-task-run) have no corresponding
// options on this backend and are silently not applied here — the
// passthrough path always runs interrupt-driven submit-and-wait. cfg.FD is
// not registered as a fixed file; submissions name the raw FD.
func NewPassthrough(cfg Config) (Ring, error) {
	r, err := iouring.New(uint(cfg.Depth), iouring.WithSQE128(), iouring.WithCQE32())
	if err != nil {
		return nil, &rioerr.RingInitError{Err: err}
	}

	return &passthroughRing{
		ring:    r,
		fd:      cfg.FD,
		depth:   cfg.Depth,
		results: make(chan passCompletion, cfg.Depth),
	}, nil
}

// RegisterBuffers is unsupported here: passthrough commands carry a raw
// host address and never consult the registered-buffer table (spec.md
// §4.D). Called only if a caller mis-wires the direct-mode setup path
// against a passthrough ring.
func (p *passthroughRing) RegisterBuffers(bufs [][]byte) error {
	return &rioerr.RegistrationError{What: "fixed buffers", Err: errUnsupportedOnPassthrough}
}

func (p *passthroughRing) SubmitReadDirect(int, []byte, uint64) error {
	return errUnsupportedOnPassthrough
}

func (p *passthroughRing) SubmitWriteDirect(int, []byte, uint64) error {
	return errUnsupportedOnPassthrough
}

func (p *passthroughRing) SubmitReadPassthrough(bufIndex int, buf []byte, nsid uint32, lba uint64, blockLBAs uint32, lbaSize uint32) error {
	return p.submit(bufIndex, buf, nsid, lba, blockLBAs, lbaSize, nvmeCmdRead)
}

func (p *passthroughRing) SubmitWritePassthrough(bufIndex int, buf []byte, nsid uint32, lba uint64, blockLBAs uint32, lbaSize uint32) error {
	return p.submit(bufIndex, buf, nsid, lba, blockLBAs, lbaSize, nvmeCmdWrite)
}

func (p *passthroughRing) submit(bufIndex int, buf []byte, nsid uint32, lba uint64, blockLBAs uint32, lbaSize uint32, opcode uint8) error {
	addr := uint64(uintptr(unsafe.Pointer(&buf[0])))
	cmd := buildNVMeCmd(opcode, nsid, addr, lba, blockLBAs, lbaSize)

	prepReq := func(sqe iosys.SubmissionQueueEntry, _ *iouring.UserData) {
		sqe.PrepOperation(iosys.IORING_OP_URING_CMD, p.fd, 0, 0, uint64(nvmeUringCmdIO))
		sqe.SetUserData(uint64(bufIndex))
		cmdPtr := sqe.CMD(cmd)
		*cmdPtr.(*nvmeUringCmd) = cmd
	}

	ch := make(chan iouring.Result, 1)
	if _, err := p.ring.SubmitRequest(prepReq, ch); err != nil {
		return wrapQueueFull(p.depth)
	}

	go func(idx int) {
		res := <-ch
		v, rerr := res.ReturnInt()
		if rerr != nil {
			p.results <- passCompletion{bufIndex: idx, err: rerr}
			return
		}
		p.results <- passCompletion{bufIndex: idx, res: int32(v), err: res.Err()}
	}(bufIndex)

	return nil
}

// Flush is a no-op for the passthrough backend: iouring-go's
// SubmitRequest already performs the submission-ring flush as part of
// each call, so there's no separate pending batch to push here.
func (p *passthroughRing) Flush() error { return nil }

func (p *passthroughRing) Wait() (Completion, error) {
	pc := <-p.results
	if pc.err != nil {
		return Completion{}, pc.err
	}
	return Completion{UserData: uint64(pc.bufIndex), Res: pc.res}, nil
}

func (p *passthroughRing) TryNext() (Completion, bool) {
	select {
	case pc := <-p.results:
		if pc.err != nil {
			return Completion{}, false
		}
		return Completion{UserData: uint64(pc.bufIndex), Res: pc.res}, true
	default:
		return Completion{}, false
	}
}

func (p *passthroughRing) Close() error {
	p.ring.Close()
	return nil
}
