package lba

import "testing"

func TestGeneratorInBounds(t *testing.T) {
	const nlba = 1000
	const blockLBAs = 8
	g := New(nlba, blockLBAs)

	for i := 0; i < 10000; i++ {
		v := g.Next()
		if v > nlba-blockLBAs {
			t.Fatalf("Next() = %d, exceeds max start LBA %d", v, nlba-blockLBAs)
		}
	}
}

func TestGeneratorDegenerate(t *testing.T) {
	g := New(4, 8)
	for i := 0; i < 10; i++ {
		if v := g.Next(); v != 0 {
			t.Fatalf("Next() = %d, want 0 for nlba <= blockLBAs", v)
		}
	}
}
