// Package bufpool owns the fixed-size, page-aligned DMA buffers handed to
// the ring for direct I/O and passthrough NVMe commands. Component B of
// the benchmark core.
package bufpool

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Pool owns iodepth buffers of blockSize bytes each, indexed by slot.
// Indexing is stable for the pool's lifetime; slots are recycled by the
// engine loop, never reallocated.
type Pool struct {
	region    []byte
	blockSize int
	depth     int
}

// New allocates depth buffers of blockSize bytes each as one contiguous
// anonymous mmap region. unix.Mmap page-aligns the mapping, which already
// satisfies the max(lba_size, 512) alignment direct I/O and NVMe DMA
// require — the same primitive the rest of this codebase's ambient stack
// uses for aligned allocation rather than a hand-rolled posix_memalign.
func New(depth, blockSize, minAlign int) (*Pool, error) {
	if depth <= 0 || blockSize <= 0 {
		return nil, fmt.Errorf("invalid pool dimensions: depth=%d blockSize=%d", depth, blockSize)
	}

	region, err := unix.Mmap(-1, 0, depth*blockSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate buffer pool: %w", err)
	}

	p := &Pool{region: region, blockSize: blockSize, depth: depth}

	addr := uintptr(unsafe.Pointer(&region[0]))
	if addr%uintptr(minAlign) != 0 {
		// A page-aligned mmap region that fails max(lba_size, 512) alignment
		// means the host page size is smaller than the required alignment,
		// which cannot happen on any platform rio targets. Not a runtime
		// condition a caller can recover from.
		panic(fmt.Sprintf("bufpool: mmap region %p not aligned to %d", region, minAlign))
	}

	return p, nil
}

// Slot returns the buffer for the given index. The slice aliases the
// pool's backing storage; callers must not retain it past Close.
func (p *Pool) Slot(idx int) []byte {
	return p.region[idx*p.blockSize : (idx+1)*p.blockSize]
}

// Depth returns the number of buffer slots in the pool.
func (p *Pool) Depth() int { return p.depth }

// BlockSize returns the size in bytes of each slot.
func (p *Pool) BlockSize() int { return p.blockSize }

// Close releases the pool's backing storage.
func (p *Pool) Close() error {
	if p.region == nil {
		return nil
	}
	err := unix.Munmap(p.region)
	p.region = nil
	return err
}
