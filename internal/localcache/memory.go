package localcache

import "sync"

// MemoryBackend is a process-local Backend. FailPuts makes every Put return
// the given error, which lets callers exercise cache write failures.
type MemoryBackend struct {
	mu       sync.Mutex
	slots    map[string][]byte
	puts     int
	FailPuts error
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[string][]byte)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(slot string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.slots[slot]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Put implements Backend.
func (m *MemoryBackend) Put(slot string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPuts != nil {
		return m.FailPuts
	}
	m.slots[slot] = append([]byte(nil), data...)
	m.puts++
	return nil
}

// Puts reports how many successful writes the backend has seen.
func (m *MemoryBackend) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Close implements Backend.
func (m *MemoryBackend) Close() error { return nil }
