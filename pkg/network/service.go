// Package network hosts a single graph index and serializes access to it.
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/chainpath/pkg/graph"
	"github.com/DrSkyle/chainpath/pkg/policy"
	"github.com/DrSkyle/chainpath/pkg/storage"
	"github.com/DrSkyle/chainpath/pkg/telemetry"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("network closed")

// Service runs operations against one Index. Mutations hold the write lock
// and queries the read lock, so a query never observes a partially applied
// AddEdges.
type Service struct {
	mu     sync.RWMutex
	index  *graph.Index
	finder *graph.PathFinder
	closed bool

	logger *slog.Logger
	tracer trace.Tracer
	closer io.Closer
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCloser registers a resource, such as a Badger handle, released by
// Close.
func WithCloser(c io.Closer) Option {
	return func(s *Service) { s.closer = c }
}

func New(index *graph.Index, opts ...Option) *Service {
	s := &Service{
		index:  index,
		finder: graph.NewPathFinder(index),
		logger: telemetry.Discard(),
		tracer: otel.Tracer("chainpath/network"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMemory returns a Service over a fresh in-memory index.
func NewMemory(opts ...Option) *Service {
	return New(graph.NewMemoryIndex(), opts...)
}

func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, error) {
	if err := ctx.Err(); err != nil {
		return ctx, nil, err
	}
	ctx, span := s.tracer.Start(ctx, "network."+op, trace.WithAttributes(attrs...))
	return ctx, span, nil
}

func (s *Service) fail(span trace.Span, op string, err error) error {
	operationErrors.WithLabelValues(op).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Error("operation failed", slog.String("operation", op), slog.String("error", err.Error()))
	return err
}

// AddEdges flags node on-chain and records its neighbors.
func (s *Service) AddEdges(ctx context.Context, node string, neighbors []string) error {
	const op = "add_edges"
	_, span, err := s.start(ctx, op, attribute.String("node", node), attribute.Int("neighbors", len(neighbors)))
	if err != nil {
		return err
	}
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.fail(span, op, ErrClosed)
	}

	if err := s.index.AddEdges(node, neighbors); err != nil {
		return s.fail(span, op, err)
	}
	edgesAdded.Add(float64(len(neighbors)))
	s.logger.Debug("edges added", slog.String("node", node), slog.Int("neighbors", len(neighbors)))
	return nil
}

// FindPaths returns the paths between from and to, optionally narrowed by a
// compiled filter.
func (s *Service) FindPaths(ctx context.Context, from, to string, filter *policy.PathFilter) ([]graph.Path, error) {
	const op = "find_paths"
	_, span, err := s.start(ctx, op, attribute.String("from", from), attribute.String("to", to))
	if err != nil {
		return nil, err
	}
	defer span.End()

	started := time.Now()
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, s.fail(span, op, ErrClosed)
	}
	paths, err := s.finder.Find(from, to)
	s.mu.RUnlock()
	pathQueryDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, s.fail(span, op, err)
	}

	pathQueries.WithLabelValues(degreeLabel(paths)).Inc()

	if filter != nil {
		paths, err = filter.Apply(paths)
		if err != nil {
			return nil, s.fail(span, op, err)
		}
	}

	span.SetAttributes(attribute.Int("paths", len(paths)))
	s.logger.Debug("paths found",
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("paths", len(paths)),
		slog.String("filter", filter.String()),
	)
	return paths, nil
}

// FullNeighbors returns name's full-graph neighbors.
func (s *Service) FullNeighbors(ctx context.Context, name string) ([]string, error) {
	return s.neighbors(ctx, "full_neighbors", name, s.index.FullNeighbors)
}

// OnChainNeighbors returns name's on-chain neighbors.
func (s *Service) OnChainNeighbors(ctx context.Context, name string) ([]string, error) {
	return s.neighbors(ctx, "on_chain_neighbors", name, s.index.OnChainNeighbors)
}

func (s *Service) neighbors(ctx context.Context, op, name string, get func(string) (*graph.NameSet, error)) ([]string, error) {
	_, span, err := s.start(ctx, op, attribute.String("node", name))
	if err != nil {
		return nil, err
	}
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, s.fail(span, op, ErrClosed)
	}

	set, err := get(name)
	if err != nil {
		return nil, s.fail(span, op, err)
	}
	return set.Slice(), nil
}

func (s *Service) IsOnChain(ctx context.Context, name string) (bool, error) {
	const op = "is_on_chain"
	_, span, err := s.start(ctx, op, attribute.String("node", name))
	if err != nil {
		return false, err
	}
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, s.fail(span, op, ErrClosed)
	}

	ok, err := s.index.IsOnChain(name)
	if err != nil {
		return false, s.fail(span, op, err)
	}
	return ok, nil
}

func (s *Service) Stats(ctx context.Context) (graph.Stats, error) {
	const op = "stats"
	_, span, err := s.start(ctx, op)
	if err != nil {
		return graph.Stats{}, err
	}
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return graph.Stats{}, s.fail(span, op, ErrClosed)
	}

	st, err := s.index.Stats()
	if err != nil {
		return graph.Stats{}, s.fail(span, op, err)
	}
	return st, nil
}

// Export writes a snapshot of the index to store under key.
func (s *Service) Export(ctx context.Context, store storage.BlobStore, key string) error {
	const op = "export"
	ctx, span, err := s.start(ctx, op, attribute.String("key", key))
	if err != nil {
		return err
	}
	defer span.End()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return s.fail(span, op, ErrClosed)
	}
	snap, err := s.index.Snapshot()
	s.mu.RUnlock()
	if err != nil {
		return s.fail(span, op, err)
	}

	data, err := graph.MarshalSnapshot(snap)
	if err != nil {
		return s.fail(span, op, fmt.Errorf("encode snapshot: %w", err))
	}
	if err := store.Put(ctx, key, data); err != nil {
		return s.fail(span, op, fmt.Errorf("write snapshot %s: %w", key, err))
	}

	s.logger.Info("snapshot exported",
		slog.String("key", key),
		slog.Int("bytes", len(data)),
		slog.Int("on_chain", len(snap.OnChain)),
	)
	return nil
}

// Import merges the snapshot at key into the index.
func (s *Service) Import(ctx context.Context, store storage.BlobStore, key string) error {
	const op = "import"
	ctx, span, err := s.start(ctx, op, attribute.String("key", key))
	if err != nil {
		return err
	}
	defer span.End()

	data, err := store.Get(ctx, key)
	if err != nil {
		return s.fail(span, op, fmt.Errorf("read snapshot %s: %w", key, err))
	}
	snap, err := graph.UnmarshalSnapshot(data)
	if err != nil {
		return s.fail(span, op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.fail(span, op, ErrClosed)
	}
	if err := s.index.Restore(snap); err != nil {
		return s.fail(span, op, err)
	}

	s.logger.Info("snapshot imported", slog.String("key", key), slog.Int("on_chain", len(snap.OnChain)))
	return nil
}

// Close releases the registered closer. Later calls are no-ops.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
