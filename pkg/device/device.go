// Package device owns the open file descriptor to the target NVMe device
// and exposes the geometry (logical block size, namespace capacity, nsid)
// the rest of the engine needs. It is Component A of the benchmark core:
// everything here is setup/teardown work, never called from the hot loop.
package device

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/adamsoliev/rio/pkg/rioerr"
)

// deviceWarnings receives non-fatal diagnostics (e.g. an unrecognized
// device path during nvme->ng translation). Tests may redirect it.
var deviceWarnings io.Writer = os.Stderr

// Mode selects the I/O path used against the device.
type Mode int

const (
	Direct Mode = iota
	Passthrough
)

// Linux block-layer ioctl numbers (linux/fs.h). golang.org/x/sys/unix does
// not export these directly, so they're defined the same way the reference
// C implementation pulls them in via <linux/fs.h>.
const (
	blkGetSize64 = 0x80081272 // _IOR(0x12, 114, size_t)
	blkSSZGet    = 0x1268     // _IO(0x12, 104)
)

// NVMe ioctl numbers and admin opcodes (linux/nvme_ioctl.h).
const (
	nvmeIoctlID       = 0x4e40 // _IO('N', 0x40)
	nvmeIoctlAdminCmd = 0xc0484e41

	nvmeAdminIdentify  = 0x06
	nvmeIdentifyCnsNS  = 0x00
	nvmeCSINVM         = 0x00
	nvmeDefaultTimeout = 60000 // ms
)

// nvmePassthruCmd mirrors struct nvme_passthru_cmd from
// linux/nvme_ioctl.h. Field order and widths must match the kernel ABI
// exactly since this is copied verbatim into the ioctl argument.
type nvmePassthruCmd struct {
	Opcode      uint8
	Flags       uint8
	RSVD1       uint16
	Nsid        uint32
	CDW2        uint32
	CDW3        uint32
	Metadata    uint64
	Addr        uint64
	MetadataLen uint32
	DataLen     uint32
	CDW10       uint32
	CDW11       uint32
	CDW12       uint32
	CDW13       uint32
	CDW14       uint32
	CDW15       uint32
	TimeoutMs   uint32
	Result      uint32
}

var _ [72]byte = [unsafe.Sizeof(nvmePassthruCmd{})]byte{}

// idNS mirrors the fields of struct nvme_id_ns (linux/nvme_ioctl.h) that
// rio needs: namespace size and the active LBA format's data-size
// exponent. The full struct is 4096 bytes; only the prefix is modeled.
type idNS struct {
	NSZE       uint64
	NCAP       uint64
	NUSE       uint64
	NSFEAT     uint8
	NLBAF      uint8
	FLBAS      uint8
	MC         uint8
	DPC        uint8
	DPS        uint8
	NMIC       uint8
	RESCAP     uint8
	FPI        uint8
	DLFEAT     uint8
	NAWUN      uint16
	NAWUPF     uint16
	NACWU      uint16
	NABSN      uint16
	NABO       uint16
	NABSPF     uint16
	NOIOB      uint16
	NVMCAP     [16]byte
	_          [64]byte
	LBAF       [16]lbaFormat
}

var _ [192]byte = [unsafe.Sizeof(idNS{})]byte{}

type lbaFormat struct {
	MS uint16
	DS uint8
	RP uint8
}

// Descriptor describes the opened device: its fixed file descriptor and
// the geometry queried at open time. Immutable after Open returns.
type Descriptor struct {
	FD      int
	Nsid    uint32
	LBASize uint32
	NLBA    uint64
	Mode    Mode
}

// Open opens path in the requested mode and queries device geometry.
// In Direct mode, path is opened with O_DIRECT directly. In Passthrough
// mode, path is translated to its character-device sibling first (see
// ResolveCharDevice).
func Open(path string, mode Mode) (*Descriptor, error) {
	if mode == Passthrough {
		return openPassthrough(path)
	}
	return openDirect(path)
}

func openDirect(path string) (*Descriptor, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_DIRECT, 0)
	if err != nil {
		return nil, &rioerr.DeviceOpenError{Path: path, Err: err}
	}

	var sizeBytes uint64
	if err := ioctlPtr(fd, blkGetSize64, unsafe.Pointer(&sizeBytes)); err != nil {
		unix.Close(fd)
		return nil, &rioerr.CapabilityQueryError{Op: "BLKGETSIZE64", Err: err}
	}

	var lbaSize int32
	if err := ioctlPtr(fd, blkSSZGet, unsafe.Pointer(&lbaSize)); err != nil {
		unix.Close(fd)
		return nil, &rioerr.CapabilityQueryError{Op: "BLKSSZGET", Err: err}
	}

	return &Descriptor{
		FD:      fd,
		Nsid:    0,
		LBASize: uint32(lbaSize),
		NLBA:    sizeBytes / uint64(lbaSize),
		Mode:    Direct,
	}, nil
}

func openPassthrough(path string) (*Descriptor, error) {
	charPath, err := ResolveCharDevice(path)
	if err != nil {
		return nil, &rioerr.DeviceOpenError{Path: path, Err: err}
	}

	fd, err := unix.Open(charPath, unix.O_RDWR, 0)
	if err != nil {
		return nil, &rioerr.DeviceOpenError{Path: charPath, Err: err}
	}

	var nsid uint32
	if err := ioctlPtr(fd, nvmeIoctlID, unsafe.Pointer(&nsid)); err != nil {
		unix.Close(fd)
		return nil, &rioerr.CapabilityQueryError{Op: "NVME_IOCTL_ID", Err: err}
	}

	identifyBuf, err := unix.Mmap(-1, 0, 4096, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		unix.Close(fd)
		return nil, &rioerr.CapabilityQueryError{Op: "identify buffer alloc", Err: err}
	}
	defer unix.Munmap(identifyBuf)

	cmd := nvmePassthruCmd{
		Opcode:    nvmeAdminIdentify,
		Nsid:      nsid,
		Addr:      uint64(uintptr(unsafe.Pointer(&identifyBuf[0]))),
		DataLen:   uint32(len(identifyBuf)),
		CDW10:     nvmeIdentifyCnsNS,
		CDW11:     uint32(nvmeCSINVM) << 24,
		TimeoutMs: nvmeDefaultTimeout,
	}
	if err := ioctlPtr(fd, nvmeIoctlAdminCmd, unsafe.Pointer(&cmd)); err != nil {
		unix.Close(fd)
		return nil, &rioerr.CapabilityQueryError{Op: "NVME_IOCTL_ADMIN_CMD identify-namespace", Err: err}
	}

	ns := (*idNS)(unsafe.Pointer(&identifyBuf[0]))
	lbaFormatIndex := ns.FLBAS & 0x0F
	ds := ns.LBAF[lbaFormatIndex].DS

	return &Descriptor{
		FD:      fd,
		Nsid:    nsid,
		LBASize: uint32(1) << ds,
		NLBA:    ns.NSZE,
		Mode:    Passthrough,
	}, nil
}

// ResolveCharDevice follows symlinks to a concrete path and derives the
// sibling character-device path by swapping the "nvme" family prefix for
// "ng", per spec.md §6's device path translation rule.
func ResolveCharDevice(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %q: %w", path, err)
	}

	hasNvme := strings.Contains(resolved, "nvme")
	hasNg := strings.Contains(resolved, "ng")

	switch {
	case hasNg && !hasNvme:
		return resolved, nil
	case hasNvme && !hasNg:
		return strings.Replace(resolved, "nvme", "ng", 1), nil
	default:
		// Neither substring present, or both present: the translation
		// rule doesn't unambiguously apply. Warn but proceed with the
		// resolved path unchanged, per spec.md §6.
		fmt.Fprintf(deviceWarnings, "warning: device path %q doesn't match the expected nvme/ng naming pattern\n", resolved)
		return resolved, nil
	}
}

// Close closes the device file descriptor.
func (d *Descriptor) Close() error {
	return unix.Close(d.FD)
}

func ioctlPtr(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
