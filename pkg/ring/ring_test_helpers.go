package ring

import "github.com/adamsoliev/rio/pkg/rioerr"

// MockRing is an in-memory Ring implementation used to exercise the
// engine loop's invariants without a real kernel ring or device — the
// LBA generator and clock are already injectable, so this is the last
// piece needed to make the loop deterministic enough for CI.
//
// Every submission completes immediately and is queued for retrieval by
// Wait/TryNext in FIFO order, with Res 0 unless FailNext scripted a result
// for that bufIndex, so tests can script both the happy path and injected
// I/O failures.
type MockRing struct {
	Depth      int
	pending    []Completion
	failuresAt map[uint64]int32
	submitted  int
	Buffers    [][]byte
}

// NewMockRing builds a mock ring with the given queue depth.
func NewMockRing(depth int) *MockRing {
	return &MockRing{Depth: depth, failuresAt: make(map[uint64]int32)}
}

// FailNext arranges for the next completion carrying the given bufIndex
// user-tag to report res instead of 0.
func (m *MockRing) FailNext(bufIndex int, res int32) {
	m.failuresAt[uint64(bufIndex)] = res
}

func (m *MockRing) RegisterBuffers(bufs [][]byte) error {
	m.Buffers = bufs
	return nil
}

func (m *MockRing) enqueue(bufIndex int) error {
	if len(m.pending) >= m.Depth {
		return &rioerr.QueueFullError{Depth: m.Depth}
	}
	res := m.failuresAt[uint64(bufIndex)]
	delete(m.failuresAt, uint64(bufIndex))
	m.pending = append(m.pending, Completion{UserData: uint64(bufIndex), Res: res})
	m.submitted++
	return nil
}

func (m *MockRing) SubmitReadDirect(bufIndex int, buf []byte, off uint64) error {
	return m.enqueue(bufIndex)
}

func (m *MockRing) SubmitWriteDirect(bufIndex int, buf []byte, off uint64) error {
	return m.enqueue(bufIndex)
}

func (m *MockRing) SubmitReadPassthrough(bufIndex int, buf []byte, nsid uint32, lba uint64, blockLBAs uint32, lbaSize uint32) error {
	return m.enqueue(bufIndex)
}

func (m *MockRing) SubmitWritePassthrough(bufIndex int, buf []byte, nsid uint32, lba uint64, blockLBAs uint32, lbaSize uint32) error {
	return m.enqueue(bufIndex)
}

func (m *MockRing) Flush() error { return nil }

func (m *MockRing) Wait() (Completion, error) {
	c, _ := m.TryNext()
	return c, nil
}

func (m *MockRing) TryNext() (Completion, bool) {
	if len(m.pending) == 0 {
		return Completion{}, false
	}
	c := m.pending[0]
	m.pending = m.pending[1:]
	return c, true
}

func (m *MockRing) Close() error { return nil }
