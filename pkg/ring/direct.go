package ring

import (
	"fmt"
	"time"

	goring "github.com/godzie44/go-uring/uring"

	"github.com/adamsoliev/rio/pkg/rioerr"
)

// directRing implements Ring for the block-layer direct-I/O path using
// godzie44/go-uring — the library the benchmarking reference's uring
// engine (pkg/engine/uring.go in the pack) builds its worker loop on.
// Submissions use the compact fixed-file/fixed-buffer read/write shape;
// the standard 64-byte SQE / 16-byte CQE sizes are sufficient here.
type directRing struct {
	ring   *goring.Ring
	depth  int
	submit SubmitDiscipline
}

// NewDirect constructs a ring for the direct-I/O path and registers cfg.FD
// as fixed file index 0.
func NewDirect(cfg Config) (Ring, error) {
	flags := Select(cfg.Submit, cfg.Completion)

	opts := []goring.SetupOption{goring.WithSingleIssuer()}
	if flags.DeferredTaskRun {
		opts = append(opts, goring.WithDeferTaskrun())
	}
	if flags.IOPoll {
		opts = append(opts, goring.WithIOPoll())
	}
	if flags.SQPoll {
		opts = append(opts, goring.WithSQPoll(time.Duration(flags.SQThreadIdleMs)*time.Millisecond))
	}

	r, err := goring.New(uint32(cfg.Depth), opts...)
	if err != nil {
		return nil, &rioerr.RingInitError{Err: err}
	}

	if err := r.RegisterFiles([]int32{cfg.FD}); err != nil {
		r.Close()
		return nil, &rioerr.RegistrationError{What: "fixed file", Err: err}
	}

	return &directRing{ring: r, depth: cfg.Depth, submit: cfg.Submit}, nil
}

func (d *directRing) RegisterBuffers(bufs [][]byte) error {
	if err := d.ring.RegisterBuffers(bufs); err != nil {
		return &rioerr.RegistrationError{What: "fixed buffers", Err: err}
	}
	return nil
}

const fixedFileIndex = 0

func (d *directRing) SubmitReadDirect(bufIndex int, buf []byte, off uint64) error {
	op := goring.ReadFixed(fixedFileIndex, buf, off, bufIndex)
	if err := d.ring.QueueSQE(op, goring.SqeFixedFile, uint64(bufIndex)); err != nil {
		return wrapQueueFull(d.depth)
	}
	return nil
}

func (d *directRing) SubmitWriteDirect(bufIndex int, buf []byte, off uint64) error {
	op := goring.WriteFixed(fixedFileIndex, buf, off, bufIndex)
	if err := d.ring.QueueSQE(op, goring.SqeFixedFile, uint64(bufIndex)); err != nil {
		return wrapQueueFull(d.depth)
	}
	return nil
}

func (d *directRing) SubmitReadPassthrough(int, []byte, uint32, uint64, uint32, uint32) error {
	return fmt.Errorf("direct ring does not support passthrough submissions")
}

func (d *directRing) SubmitWritePassthrough(int, []byte, uint32, uint64, uint32, uint32) error {
	return fmt.Errorf("direct ring does not support passthrough submissions")
}

func (d *directRing) Flush() error {
	_, err := d.ring.Submit()
	return err
}

func (d *directRing) Wait() (Completion, error) {
	var cqe *goring.CQEvent
	var err error
	switch d.submit {
	case SubmitAndWait:
		cqe, err = d.ring.SubmitAndWaitCQEvents(1)
	default: // SplitSubmitWait, SQPoll
		if _, serr := d.ring.Submit(); serr != nil {
			return Completion{}, serr
		}
		cqe, err = d.ring.WaitCQEvents(1)
	}
	if err != nil {
		return Completion{}, err
	}
	c := Completion{UserData: cqe.UserData, Res: cqe.Res}
	d.ring.SeenCQE(cqe)
	return c, nil
}

func (d *directRing) TryNext() (Completion, bool) {
	cqe, err := d.ring.PeekCQE()
	if err != nil || cqe == nil {
		return Completion{}, false
	}
	c := Completion{UserData: cqe.UserData, Res: cqe.Res}
	d.ring.SeenCQE(cqe)
	return c, true
}

func (d *directRing) Close() error {
	d.ring.Close()
	return nil
}
