package graph

import "fmt"

// Stats summarises an index.
type Stats struct {
	Nodes        int `json:"nodes"`
	Edges        int `json:"edges"`          // undirected, full graph
	OnChainEdges int `json:"on_chain_edges"` // directed
	OnChainNodes int `json:"on_chain_nodes"`
	Components   int `json:"components"` // connected components of the full graph
}

func (s Stats) String() string {
	return fmt.Sprintf("Nodes: %d | Edges: %d | On-chain: %d nodes, %d edges | Components: %d",
		s.Nodes, s.Edges, s.OnChainNodes, s.OnChainEdges, s.Components)
}

// Stats walks every stored name. Cost is linear in the graph size.
func (x *Index) Stats() (Stats, error) {
	var st Stats

	keys, err := x.edges.Names()
	if err != nil {
		return st, fmt.Errorf("list full-graph names: %w", err)
	}
	members, err := x.onChain.Members()
	if err != nil {
		return st, fmt.Errorf("list on-chain names: %w", err)
	}
	st.OnChainNodes = len(members)

	slot := make(map[string]int, len(keys)+len(members))
	for _, group := range [][]string{keys, members} {
		for _, n := range group {
			if _, ok := slot[n]; !ok {
				slot[n] = len(slot)
			}
		}
	}
	st.Nodes = len(slot)

	uf := NewUnionFind(len(slot))
	directed, loops := 0, 0
	for _, n := range keys {
		set, err := x.edges.Neighbors(n)
		if err != nil {
			return st, fmt.Errorf("full neighbors of %q: %w", n, err)
		}
		for _, m := range set.Slice() {
			directed++
			if m == n {
				loops++
			}
			uf.Union(slot[n], slot[m])
		}
	}
	// A self-edge is stored once; every other edge twice.
	st.Edges = (directed + loops) / 2
	st.Components = uf.Sets()

	onKeys, err := x.onChainEdges.Names()
	if err != nil {
		return st, fmt.Errorf("list on-chain names: %w", err)
	}
	for _, n := range onKeys {
		set, err := x.onChainEdges.Neighbors(n)
		if err != nil {
			return st, fmt.Errorf("on-chain neighbors of %q: %w", n, err)
		}
		st.OnChainEdges += set.Len()
	}
	return st, nil
}
