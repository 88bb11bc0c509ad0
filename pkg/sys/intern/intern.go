package intern

import "sync"

// InvalidID is never handed out; it marks the empty string.
const InvalidID uint32 = 0

// Pool maps strings to dense uint32 IDs and back.
type Pool struct {
	mu      sync.RWMutex
	store   map[string]uint32
	reverse []string
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{
		store:   make(map[string]uint32),
		reverse: make([]string, 0, 1000),
	}
}

// Get returns the unique ID for s, allocating a new one if necessary.
// IDs are 1-based so that 0 stays a sentinel.
func (p *Pool) Get(s string) uint32 {
	if s == "" {
		return InvalidID
	}

	p.mu.RLock()
	id, ok := p.store[s]
	p.mu.RUnlock()
	if ok {
		return id
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if id, ok := p.store[s]; ok {
		return id
	}

	p.reverse = append(p.reverse, s)
	id = uint32(len(p.reverse))
	p.store[s] = id
	return id
}

// Lookup returns the ID for s without allocating.
func (p *Pool) Lookup(s string) (uint32, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.store[s]
	return id, ok
}

// Str returns the string for the given ID.
func (p *Pool) Str(id uint32) string {
	if id == InvalidID {
		return ""
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	idx := int(id) - 1
	if idx < 0 || idx >= len(p.reverse) {
		return ""
	}
	return p.reverse[idx]
}
