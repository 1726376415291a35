package bufpool

import (
	"testing"
	"unsafe"
)

// Universal property from spec.md §8: every buffer's address is a multiple
// of max(lba_size, 512).
func TestSlotAlignment(t *testing.T) {
	cases := []struct {
		depth, blockSize, minAlign int
	}{
		{depth: 1, blockSize: 4096, minAlign: 512},
		{depth: 4, blockSize: 4096, minAlign: 512},
		{depth: 32, blockSize: 512, minAlign: 512},
		{depth: 8, blockSize: 65536, minAlign: 4096},
		{depth: 16, blockSize: 4096, minAlign: 4096},
	}

	for _, c := range cases {
		p, err := New(c.depth, c.blockSize, c.minAlign)
		if err != nil {
			t.Fatalf("New(%d, %d, %d): %v", c.depth, c.blockSize, c.minAlign, err)
		}

		for i := 0; i < c.depth; i++ {
			addr := uintptr(unsafe.Pointer(&p.Slot(i)[0]))
			if addr%uintptr(c.minAlign) != 0 {
				t.Errorf("depth=%d blockSize=%d minAlign=%d: slot %d address %#x not aligned",
					c.depth, c.blockSize, c.minAlign, i, addr)
			}
		}

		if err := p.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
}
