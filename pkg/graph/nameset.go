package graph

// NameSet is a set of node names that remembers insertion order.
// A nil *NameSet reads as empty.
type NameSet struct {
	index map[string]int
	names []string
}

// NewNameSet builds a set from names, dropping duplicates.
func NewNameSet(names ...string) *NameSet {
	s := &NameSet{index: make(map[string]int, len(names))}
	for _, n := range names {
		s.Insert(n)
	}
	return s
}

// Insert adds name and reports whether it was new.
func (s *NameSet) Insert(name string) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = len(s.names)
	s.names = append(s.names, name)
	return true
}

func (s *NameSet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

func (s *NameSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Slice returns a copy of the members.
func (s *NameSet) Slice() []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Intersect returns the members of s that are also in other, in s's order.
func (s *NameSet) Intersect(other *NameSet) []string {
	if s.Len() == 0 || other.Len() == 0 {
		return nil
	}
	var out []string
	for _, n := range s.names {
		if other.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}
