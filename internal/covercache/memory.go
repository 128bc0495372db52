package covercache

import "sync"

// Memory is a process-local cache; entries live until Clear.
type Memory struct {
	mu   sync.RWMutex
	urls map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{urls: make(map[string]string)}
}

func (m *Memory) CoverURL(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	url, ok := m.urls[id]
	return url, ok
}

func (m *Memory) SetCoverURL(id, url string) error {
	if id == "" || url == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[id] = url
	return nil
}

func (m *Memory) Prune() (int64, error) { return 0, nil }

func (m *Memory) Clear() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.urls))
	m.urls = make(map[string]string)
	return n, nil
}

func (m *Memory) Close() error { return nil }
