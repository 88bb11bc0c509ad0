package graph

// AdjacencyStore maps a node name to the set of its neighbors.
//
// Neighbors never creates an entry: an unknown name yields an empty set.
// Only Link grows the store.
type AdjacencyStore interface {
	Neighbors(name string) (*NameSet, error)
	Link(name, neighbor string) error
	Names() ([]string, error)
}

// MemberStore is a persistent set of node names.
type MemberStore interface {
	Contains(name string) (bool, error)
	Insert(name string) error
	Members() ([]string, error)
}
