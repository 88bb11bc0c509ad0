package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// SnapshotVersion is the current snapshot format.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned for a snapshot this build cannot read.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot is the persisted form of an Index: the on-chain flag set and both
// adjacency relations, stored verbatim.
type Snapshot struct {
	Version      int                 `json:"version"`
	OnChain      []string            `json:"on_chain"`
	Edges        map[string][]string `json:"edges"`
	OnChainEdges map[string][]string `json:"on_chain_edges"`
}

// Snapshot copies the index into a Snapshot.
func (x *Index) Snapshot() (*Snapshot, error) {
	members, err := x.onChain.Members()
	if err != nil {
		return nil, fmt.Errorf("list on-chain names: %w", err)
	}
	edges, err := dumpStore(x.edges)
	if err != nil {
		return nil, fmt.Errorf("dump full graph: %w", err)
	}
	onChainEdges, err := dumpStore(x.onChainEdges)
	if err != nil {
		return nil, fmt.Errorf("dump on-chain graph: %w", err)
	}
	return &Snapshot{
		Version:      SnapshotVersion,
		OnChain:      members,
		Edges:        edges,
		OnChainEdges: onChainEdges,
	}, nil
}

func dumpStore(s AdjacencyStore) (map[string][]string, error) {
	names, err := s.Names()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(names))
	for _, n := range names {
		set, err := s.Neighbors(n)
		if err != nil {
			return nil, err
		}
		out[n] = set.Slice()
	}
	return out, nil
}

// Restore merges snap into the index. Links are replayed as stored rather
// than re-derived through AddEdges, so the on-chain relation comes back
// exactly as it was captured.
func (x *Index) Restore(snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	for _, n := range snap.OnChain {
		if err := x.onChain.Insert(n); err != nil {
			return fmt.Errorf("restore on-chain flag %q: %w", n, err)
		}
	}
	if err := loadStore(x.edges, snap.Edges); err != nil {
		return fmt.Errorf("restore full graph: %w", err)
	}
	if err := loadStore(x.onChainEdges, snap.OnChainEdges); err != nil {
		return fmt.Errorf("restore on-chain graph: %w", err)
	}
	return nil
}

func loadStore(s AdjacencyStore, adj map[string][]string) error {
	for _, n := range slices.Sorted(maps.Keys(adj)) {
		for _, m := range adj[n] {
			if err := s.Link(n, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// MarshalSnapshot encodes snap as indented JSON.
func MarshalSnapshot(snap *Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// UnmarshalSnapshot decodes and version-checks a snapshot.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	return &snap, nil
}
