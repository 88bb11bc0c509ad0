package network

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/DrSkyle/chainpath/pkg/graph"
	"github.com/DrSkyle/chainpath/pkg/policy"
)

// Query is one endpoint pair.
type Query struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// Answer pairs a Query with its paths.
type Answer struct {
	Query
	Paths []graph.Path `json:"paths"`
}

// FindPathsBatch answers queries concurrently on at most workers goroutines
// (GOMAXPROCS when workers <= 0). Answers are in query order. The first
// failure cancels the rest.
func (s *Service) FindPathsBatch(ctx context.Context, queries []Query, filter *policy.PathFilter, workers int) ([]Answer, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	answers := make([]Answer, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, q := range queries {
		g.Go(func() error {
			paths, err := s.FindPaths(ctx, q.From, q.To, filter)
			if err != nil {
				return err
			}
			answers[i] = Answer{Query: q, Paths: paths}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return answers, nil
}
