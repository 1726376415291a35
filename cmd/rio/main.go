package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/adamsoliev/rio/pkg/bufpool"
	"github.com/adamsoliev/rio/pkg/config"
	"github.com/adamsoliev/rio/pkg/device"
	"github.com/adamsoliev/rio/pkg/engine"
	"github.com/adamsoliev/rio/pkg/lba"
	"github.com/adamsoliev/rio/pkg/report"
	"github.com/adamsoliev/rio/pkg/ring"
	"github.com/adamsoliev/rio/pkg/rioerr"
	"github.com/adamsoliev/rio/pkg/stats"
)

func main() {
	f := config.SetupFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := f.Resolve()
	if err != nil {
		fail(err)
	}
	if err := f.MaybeWrite(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write config: %v\n", err)
	}

	if err := run(cfg); err != nil {
		fail(err)
	}
}

func run(cfg *config.RunConfig) error {
	mode := device.Direct
	if cfg.Mode == config.PathPassthrough {
		mode = device.Passthrough
	}

	dev, err := device.Open(cfg.Path, mode)
	if err != nil {
		return err
	}
	defer dev.Close()

	if int(cfg.BlockSize)%int(dev.LBASize) != 0 {
		return &rioerr.ArgumentError{Msg: fmt.Sprintf("bs=%d is not a multiple of device lba_size=%d", cfg.BlockSize, dev.LBASize)}
	}
	blockLBAs := uint32(cfg.BlockSize) / dev.LBASize

	pool, err := bufpool.New(cfg.QueueDepth, cfg.BlockSize, max(int(dev.LBASize), 512))
	if err != nil {
		return err
	}
	defer pool.Close()

	ringCfg := ring.Config{
		Depth:       cfg.QueueDepth,
		FD:          int32(dev.FD),
		Passthrough: mode == device.Passthrough,
		Submit:      ringSubmitDiscipline(cfg.Submit),
		Completion:  ringCompletionDiscipline(cfg.IOPoll),
	}

	var r ring.Ring
	if mode == device.Passthrough {
		r, err = ring.NewPassthrough(ringCfg)
	} else {
		r, err = ring.NewDirect(ringCfg)
	}
	if err != nil {
		return err
	}
	defer r.Close()

	if mode == device.Direct {
		bufs := make([][]byte, cfg.QueueDepth)
		for i := range bufs {
			bufs[i] = pool.Slot(i)
		}
		if err := r.RegisterBuffers(bufs); err != nil {
			return err
		}
	}

	gen := lba.New(dev.NLBA, uint64(blockLBAs))

	params := engine.Params{
		Workload:    engineWorkload(cfg.Workload),
		QueueDepth:  cfg.QueueDepth,
		BlockSize:   cfg.BlockSize,
		Nsid:        dev.Nsid,
		LBASize:     dev.LBASize,
		NLBA:        dev.NLBA,
		BlockLBAs:   blockLBAs,
		Passthrough: mode == device.Passthrough,
	}
	if cfg.IsByteBudget() {
		params.TotalOps = cfg.TotalOps()
	} else {
		params.Duration = cfg.Runtime
	}

	e := engine.New(r, pool, gen, params)
	if !cfg.IsByteBudget() {
		e.SetMonitor(stats.NewLiveMonitor(200 * time.Millisecond))
	}

	res, err := e.Run()
	if err != nil {
		return err
	}

	report.Write(os.Stdout, res, cfg.BlockSize)
	return nil
}

func engineWorkload(w config.Workload) engine.Workload {
	if w == config.RandWrite {
		return engine.RandWrite
	}
	return engine.RandRead
}

func ringSubmitDiscipline(s config.SubmitDiscipline) ring.SubmitDiscipline {
	switch s {
	case config.SplitSubmitWait:
		return ring.SplitSubmitWait
	case config.SubmitSQPoll:
		return ring.SQPoll
	default:
		return ring.SubmitAndWait
	}
}

func ringCompletionDiscipline(iopoll bool) ring.CompletionDiscipline {
	if iopoll {
		return ring.IOPoll
	}
	return ring.Interrupt
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "rio: %v\n", err)
	if ec, ok := err.(rioerr.ExitCoder); ok {
		os.Exit(ec.ExitCode())
	}
	os.Exit(1)
}
