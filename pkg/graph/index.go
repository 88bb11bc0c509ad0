package graph

import (
	"fmt"

	"github.com/DrSkyle/chainpath/pkg/sys/intern"
)

// Index owns the full acquaintance graph, the on-chain graph and the set of
// nodes flagged on-chain.
//
// The full relation is symmetric. The on-chain relation is not: when A
// declares B, B→A is always recorded but A→B only if B was already flagged.
// PathFinder expands through on-chain edges in that direction, so the
// asymmetry must be preserved.
//
// Index does no locking.
type Index struct {
	edges        AdjacencyStore
	onChainEdges AdjacencyStore
	onChain      MemberStore
	batch        Batcher
}

// BatchFunc applies writes to stores scoped to one batch.
type BatchFunc func(edges, onChainEdges AdjacencyStore, onChain MemberStore) error

// Batcher runs fn so that either all of its writes land or none do. A
// non-nil error from fn must discard the batch.
type Batcher func(fn BatchFunc) error

// NewIndex wires an index over caller-provided stores. The two adjacency
// stores must be distinct instances.
func NewIndex(edges, onChainEdges AdjacencyStore, onChain MemberStore) *Index {
	return &Index{
		edges:        edges,
		onChainEdges: onChainEdges,
		onChain:      onChain,
	}
}

// NewMemoryIndex returns an empty in-memory index.
func NewMemoryIndex() *Index {
	pool := intern.NewPool()
	return NewIndex(NewMemoryStore(pool), NewMemoryStore(pool), NewMemorySet(pool))
}

// WithBatcher makes AddEdges run through b. Without one, each store write
// stands alone and a failed AddEdges may leave earlier writes applied.
func (x *Index) WithBatcher(b Batcher) *Index {
	x.batch = b
	return x
}

// AddEdges flags node as on-chain and records its neighbor list, in order.
// Repeated edges are no-ops; self-edges are accepted.
func (x *Index) AddEdges(node string, neighbors []string) error {
	if x.batch == nil {
		return addEdges(x.edges, x.onChainEdges, x.onChain, node, neighbors)
	}
	return x.batch(func(edges, onChainEdges AdjacencyStore, onChain MemberStore) error {
		return addEdges(edges, onChainEdges, onChain, node, neighbors)
	})
}

func addEdges(edges, onChainEdges AdjacencyStore, onChain MemberStore, node string, neighbors []string) error {
	if err := onChain.Insert(node); err != nil {
		return fmt.Errorf("flag %q on-chain: %w", node, err)
	}

	for _, neighbor := range neighbors {
		if err := edges.Link(node, neighbor); err != nil {
			return fmt.Errorf("link %q -> %q: %w", node, neighbor, err)
		}
		if err := edges.Link(neighbor, node); err != nil {
			return fmt.Errorf("link %q -> %q: %w", neighbor, node, err)
		}

		flagged, err := onChain.Contains(neighbor)
		if err != nil {
			return fmt.Errorf("check %q on-chain: %w", neighbor, err)
		}
		if flagged {
			if err := onChainEdges.Link(node, neighbor); err != nil {
				return fmt.Errorf("on-chain link %q -> %q: %w", node, neighbor, err)
			}
		}
		if err := onChainEdges.Link(neighbor, node); err != nil {
			return fmt.Errorf("on-chain link %q -> %q: %w", neighbor, node, err)
		}
	}
	return nil
}

// FullNeighbors returns name's neighbors in the full graph.
func (x *Index) FullNeighbors(name string) (*NameSet, error) {
	set, err := x.edges.Neighbors(name)
	if err != nil {
		return nil, fmt.Errorf("full neighbors of %q: %w", name, err)
	}
	return set, nil
}

// OnChainNeighbors returns name's neighbors in the on-chain graph.
func (x *Index) OnChainNeighbors(name string) (*NameSet, error) {
	set, err := x.onChainEdges.Neighbors(name)
	if err != nil {
		return nil, fmt.Errorf("on-chain neighbors of %q: %w", name, err)
	}
	return set, nil
}

func (x *Index) IsOnChain(name string) (bool, error) {
	ok, err := x.onChain.Contains(name)
	if err != nil {
		return false, fmt.Errorf("on-chain flag of %q: %w", name, err)
	}
	return ok, nil
}
