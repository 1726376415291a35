package ring

import "testing"

// Scenario 5 from spec.md §8: the embedded NVMe command's opcode and
// address fields must match the read/write request exactly.
func TestBuildNVMeCmdRead(t *testing.T) {
	const lba = uint64(0x1_0000_0002)
	const blockLBAs = uint32(8)
	const lbaSize = uint32(4096)
	const nsid = uint32(1)
	const addr = uint64(0xdeadbeef000)

	cmd := buildNVMeCmd(nvmeCmdRead, nsid, addr, lba, blockLBAs, lbaSize)

	if cmd.Opcode != 0x02 {
		t.Errorf("Opcode = %#x, want 0x02", cmd.Opcode)
	}
	if cmd.Nsid != nsid {
		t.Errorf("Nsid = %d, want %d", cmd.Nsid, nsid)
	}
	if cmd.Addr != addr {
		t.Errorf("Addr = %#x, want %#x", cmd.Addr, addr)
	}
	if cmd.Len != blockLBAs*lbaSize {
		t.Errorf("Len = %d, want %d", cmd.Len, blockLBAs*lbaSize)
	}

	gotLBA := uint64(cmd.CDW10) | uint64(cmd.CDW11)<<32
	if gotLBA != lba {
		t.Errorf("cdw10|cdw11 = %#x, want %#x", gotLBA, lba)
	}
	if cmd.CDW12 != blockLBAs-1 {
		t.Errorf("CDW12 = %d, want %d", cmd.CDW12, blockLBAs-1)
	}
}

func TestBuildNVMeCmdWrite(t *testing.T) {
	cmd := buildNVMeCmd(nvmeCmdWrite, 1, 0x1000, 42, 1, 512)

	if cmd.Opcode != 0x01 {
		t.Errorf("Opcode = %#x, want 0x01", cmd.Opcode)
	}
	if cmd.CDW10 != 42 || cmd.CDW11 != 0 {
		t.Errorf("cdw10=%d cdw11=%d, want cdw10=42 cdw11=0", cmd.CDW10, cmd.CDW11)
	}
	if cmd.CDW12 != 0 {
		t.Errorf("CDW12 = %d, want 0", cmd.CDW12)
	}
}

func TestBuildNVMeCmdLowAndHighLBASplit(t *testing.T) {
	// An LBA requiring both words to be non-zero exercises the
	// low/high split rather than a value that happens to fit in cdw10.
	const lba = uint64(0x2_0000_0001)
	cmd := buildNVMeCmd(nvmeCmdRead, 1, 0, lba, 1, 4096)

	if cmd.CDW10 != uint32(lba&0xFFFFFFFF) {
		t.Errorf("CDW10 = %#x, want %#x", cmd.CDW10, uint32(lba&0xFFFFFFFF))
	}
	if cmd.CDW11 != uint32(lba>>32) {
		t.Errorf("CDW11 = %#x, want %#x", cmd.CDW11, uint32(lba>>32))
	}
}
