package graph

import (
	"cmp"
	"slices"
	"strings"
)

// MaxDegree is the longest path, in edges, that Find reports.
const MaxDegree = 4

// Path is an ordered node sequence, endpoints included.
type Path []string

// Degree is the number of edges in the path.
func (p Path) Degree() int {
	if len(p) == 0 {
		return -1
	}
	return len(p) - 1
}

func (p Path) String() string {
	return strings.Join(p, " -> ")
}

// Reader is the read-only view PathFinder needs. *Index satisfies it.
type Reader interface {
	FullNeighbors(name string) (*NameSet, error)
	OnChainNeighbors(name string) (*NameSet, error)
}

// PathFinder answers bounded path queries. It keeps no state of its own.
type PathFinder struct {
	graph Reader
}

func NewPathFinder(r Reader) *PathFinder {
	return &PathFinder{graph: r}
}

// reach is the two-hop frontier of an endpoint: every node one full hop past
// one of the endpoint's on-chain neighbors, with the on-chain neighbors
// (witnesses) that lead there.
type reach struct {
	targets   *NameSet
	witnesses map[string][]string
}

func (f *PathFinder) expand(origin string) (*reach, error) {
	r := &reach{targets: NewNameSet(), witnesses: make(map[string][]string)}

	hubs, err := f.graph.OnChainNeighbors(origin)
	if err != nil {
		return nil, err
	}
	for _, hub := range hubs.Slice() {
		landing, err := f.graph.FullNeighbors(hub)
		if err != nil {
			return nil, err
		}
		for _, c := range landing.Slice() {
			if c == origin {
				continue
			}
			r.targets.Insert(c)
			r.witnesses[c] = append(r.witnesses[c], hub)
		}
	}
	return r, nil
}

// Find returns every distinct simple path of at most MaxDegree edges from
// one node to the other that the on-chain frontier can reach.
//
// A same-node query returns [from] and a direct edge returns [from, to];
// neither looks further. Otherwise degrees 2, 3 and 4 are all collected.
// The degree-4 join can emit sequences that revisit a node, such as
// [a b c b d]; those are dropped so every result is simple.
// An empty result means nothing within reach, not an error.
func (f *PathFinder) Find(from, to string) ([]Path, error) {
	if from == to {
		return []Path{{from}}, nil
	}

	fromFirst, err := f.graph.FullNeighbors(from)
	if err != nil {
		return nil, err
	}
	if fromFirst.Contains(to) {
		return []Path{{from, to}}, nil
	}

	fromSecond, err := f.expand(from)
	if err != nil {
		return nil, err
	}
	toFirst, err := f.graph.FullNeighbors(to)
	if err != nil {
		return nil, err
	}
	toSecond, err := f.expand(to)
	if err != nil {
		return nil, err
	}

	c := newCollector()

	// 2
	for _, a := range fromFirst.Intersect(toFirst) {
		c.add(Path{from, a, to})
	}

	// 3
	for _, a := range fromSecond.targets.Intersect(toFirst) {
		for _, b := range fromSecond.witnesses[a] {
			c.add(Path{from, b, a, to})
		}
	}
	for _, a := range fromFirst.Intersect(toSecond.targets) {
		for _, b := range toSecond.witnesses[a] {
			c.add(Path{from, a, b, to})
		}
	}

	// 4
	for _, a := range fromSecond.targets.Intersect(toSecond.targets) {
		for _, b := range fromSecond.witnesses[a] {
			for _, d := range toSecond.witnesses[a] {
				c.add(Path{from, b, a, d, to})
			}
		}
	}

	return c.sorted(), nil
}

// collector deduplicates paths by exact sequence and drops any that revisit
// a node.
type collector struct {
	seen  map[string]struct{}
	paths []Path
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

func (c *collector) add(p Path) {
	if !isSimple(p) {
		return
	}
	key := strings.Join(p, "\x00")
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.paths = append(c.paths, p)
}

func (c *collector) sorted() []Path {
	slices.SortFunc(c.paths, func(a, b Path) int {
		if n := cmp.Compare(len(a), len(b)); n != 0 {
			return n
		}
		return slices.Compare(a, b)
	})
	if c.paths == nil {
		return []Path{}
	}
	return c.paths
}

func isSimple(p Path) bool {
	for i := range p {
		for j := i + 1; j < len(p); j++ {
			if p[i] == p[j] {
				return false
			}
		}
	}
	return true
}
