package network

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// SeedEntry is one AddEdges call in a seed file.
type SeedEntry struct {
	Node      string   `yaml:"node"`
	Neighbors []string `yaml:"neighbors"`
}

// ParseSeed reads a YAML list of entries:
//
//	- node: Potato
//	  neighbors: [Yulik, Sasha]
//
// Entry order is kept; the on-chain relation depends on it.
func ParseSeed(r io.Reader) ([]SeedEntry, error) {
	var entries []SeedEntry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, e := range entries {
		if e.Node == "" {
			return nil, fmt.Errorf("parse seed: entry %d has no node", i)
		}
	}
	return entries, nil
}

// Seed applies entries in order and returns how many were applied before the
// first failure.
func (s *Service) Seed(ctx context.Context, entries []SeedEntry) (int, error) {
	for i, e := range entries {
		if err := s.AddEdges(ctx, e.Node, e.Neighbors); err != nil {
			return i, fmt.Errorf("seed entry %d (%s): %w", i, e.Node, err)
		}
	}
	return len(entries), nil
}
