// Package lba generates uniformly-distributed random starting LBAs for
// the workload, Component E of the benchmark core.
package lba

import "math/rand/v2"

// Generator draws random starting LBAs within [0, nlba-blockLBAs].
type Generator struct {
	nlba      uint64
	blockLBAs uint64
	span      uint64 // nlba - blockLBAs + 1, precomputed
}

// New builds a generator for a device with nlba logical blocks, where each
// I/O spans blockLBAs logical blocks.
func New(nlba, blockLBAs uint64) *Generator {
	g := &Generator{nlba: nlba, blockLBAs: blockLBAs}
	if nlba > blockLBAs {
		g.span = nlba - blockLBAs + 1
	}
	return g
}

// Next returns a uniformly distributed LBA in [0, nlba-blockLBAs]. If
// nlba <= blockLBAs (a degenerate configuration flagged in spec.md §9),
// it returns 0 on every call.
//
// rand/v2's Uint64N performs an unbiased range reduction (Lemire's
// method under the hood), avoiding the low-address bias a plain modulo
// reduction against a non-power-of-two range would introduce.
func (g *Generator) Next() uint64 {
	if g.span == 0 {
		return 0
	}
	return rand.Uint64N(g.span)
}
