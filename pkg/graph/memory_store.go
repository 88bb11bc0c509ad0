package graph

import (
	"github.com/DrSkyle/chainpath/pkg/sys/intern"
)

// idSet is an insertion-ordered set of interned names.
type idSet struct {
	members map[uint32]struct{}
	order   []uint32
}

func newIDSet() *idSet {
	return &idSet{members: make(map[uint32]struct{})}
}

func (s *idSet) add(id uint32) bool {
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// lookupID resolves name without allocating. The empty name is always
// InvalidID, which the pool maps back to "".
func lookupID(pool *intern.Pool, name string) (uint32, bool) {
	if name == "" {
		return intern.InvalidID, true
	}
	return pool.Lookup(name)
}

// MemoryStore is an in-memory AdjacencyStore keyed by interned names.
// It does no locking; callers serialize mutation.
type MemoryStore struct {
	pool *intern.Pool
	sets map[uint32]*idSet
	keys []uint32 // first-insert order
}

// NewMemoryStore creates a store. Stores built from the same pool share name
// IDs; a nil pool gets a private one.
func NewMemoryStore(pool *intern.Pool) *MemoryStore {
	if pool == nil {
		pool = intern.NewPool()
	}
	return &MemoryStore{
		pool: pool,
		sets: make(map[uint32]*idSet, 1000),
	}
}

func (s *MemoryStore) Neighbors(name string) (*NameSet, error) {
	id, ok := lookupID(s.pool, name)
	if !ok {
		return NewNameSet(), nil
	}
	set, ok := s.sets[id]
	if !ok {
		return NewNameSet(), nil
	}
	// Return copy.
	out := &NameSet{index: make(map[string]int, len(set.order))}
	for _, nid := range set.order {
		out.Insert(s.pool.Str(nid))
	}
	return out, nil
}

func (s *MemoryStore) Link(name, neighbor string) error {
	id := s.pool.Get(name)
	set, ok := s.sets[id]
	if !ok {
		set = newIDSet()
		s.sets[id] = set
		s.keys = append(s.keys, id)
	}
	set.add(s.pool.Get(neighbor))
	return nil
}

func (s *MemoryStore) Names() ([]string, error) {
	names := make([]string, 0, len(s.keys))
	for _, id := range s.keys {
		names = append(names, s.pool.Str(id))
	}
	return names, nil
}

// MemorySet is an in-memory MemberStore.
type MemorySet struct {
	pool *intern.Pool
	set  *idSet
}

func NewMemorySet(pool *intern.Pool) *MemorySet {
	if pool == nil {
		pool = intern.NewPool()
	}
	return &MemorySet{pool: pool, set: newIDSet()}
}

func (s *MemorySet) Contains(name string) (bool, error) {
	id, ok := lookupID(s.pool, name)
	if !ok {
		return false, nil
	}
	_, member := s.set.members[id]
	return member, nil
}

func (s *MemorySet) Insert(name string) error {
	s.set.add(s.pool.Get(name))
	return nil
}

func (s *MemorySet) Members() ([]string, error) {
	names := make([]string, 0, len(s.set.order))
	for _, id := range s.set.order {
		names = append(names, s.pool.Str(id))
	}
	return names, nil
}
