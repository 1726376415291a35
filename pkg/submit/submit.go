// Package submit holds the four submission builders (Component D): one
// per {read, write} x {direct, passthrough}. Each acquires a free
// submission-queue entry from the ring and stamps the buffer index as
// the completion user-tag; a QueueFullError here means the engine's
// in_flight < depth invariant was broken upstream.
package submit

import "github.com/adamsoliev/rio/pkg/ring"

// Geometry carries the device facts a passthrough submission needs to
// build its embedded NVMe command. Direct-mode submissions only need an
// LBA and don't consult it.
type Geometry struct {
	Nsid      uint32
	LBASize   uint32
	BlockLBAs uint32
}

// ReadDirect submits a fixed-file, fixed-buffer read at LBA lba.
func ReadDirect(r ring.Ring, bufIndex int, buf []byte, lba uint64, lbaSize uint32) error {
	return r.SubmitReadDirect(bufIndex, buf, lba*uint64(lbaSize))
}

// WriteDirect submits a fixed-file, fixed-buffer write at LBA lba.
func WriteDirect(r ring.Ring, bufIndex int, buf []byte, lba uint64, lbaSize uint32) error {
	return r.SubmitWriteDirect(bufIndex, buf, lba*uint64(lbaSize))
}

// ReadPassthrough submits a URING_CMD read embedding an NVMe I/O command.
func ReadPassthrough(r ring.Ring, bufIndex int, buf []byte, g Geometry, lba uint64) error {
	return r.SubmitReadPassthrough(bufIndex, buf, g.Nsid, lba, g.BlockLBAs, g.LBASize)
}

// WritePassthrough submits a URING_CMD write embedding an NVMe I/O command.
func WritePassthrough(r ring.Ring, bufIndex int, buf []byte, g Geometry, lba uint64) error {
	return r.SubmitWritePassthrough(bufIndex, buf, g.Nsid, lba, g.BlockLBAs, g.LBASize)
}
