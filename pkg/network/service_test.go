package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/chainpath/pkg/graph"
	"github.com/DrSkyle/chainpath/pkg/policy"
	"github.com/DrSkyle/chainpath/pkg/storage"
	"github.com/DrSkyle/chainpath/pkg/telemetry"
)

func chain(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.AddEdges(ctx, "Potato", []string{"Yulik", "Sasha"}))
	require.NoError(t, s.AddEdges(ctx, "Sasha", []string{"Boris", "Potato"}))
	require.NoError(t, s.AddEdges(ctx, "Boris", []string{"Alex", "Sasha"}))
	return s
}

func TestServiceQueries(t *testing.T) {
	ctx := context.Background()
	s := chain(t)

	paths, err := s.FindPaths(ctx, "Potato", "Alex", nil)
	require.NoError(t, err)
	assert.Equal(t, []graph.Path{{"Potato", "Sasha", "Boris", "Alex"}}, paths)

	full, err := s.FullNeighbors(ctx, "Sasha")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Potato", "Boris"}, full)

	onChain, err := s.OnChainNeighbors(ctx, "Alex")
	require.NoError(t, err)
	assert.Equal(t, []string{"Boris"}, onChain)

	ok, err := s.IsOnChain(ctx, "Boris")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsOnChain(ctx, "Alex")
	require.NoError(t, err)
	assert.False(t, ok)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Nodes)
	assert.Equal(t, 4, st.Edges)
	assert.Equal(t, 3, st.OnChainNodes)
}

func TestServiceUnknownNames(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	full, err := s.FullNeighbors(ctx, "Nobody")
	require.NoError(t, err)
	assert.Empty(t, full)

	paths, err := s.FindPaths(ctx, "Nobody", "Else", nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestServiceFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.AddEdges(ctx, "Potato", []string{"Yulik", "Bulik"}))
	require.NoError(t, s.AddEdges(ctx, "Sasha", []string{"Yulik", "Bulik"}))

	all, err := s.FindPaths(ctx, "Potato", "Sasha", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	f, err := policy.Compile(`!("Bulik" in path)`)
	require.NoError(t, err)

	kept, err := s.FindPaths(ctx, "Potato", "Sasha", f)
	require.NoError(t, err)
	assert.Equal(t, []graph.Path{{"Potato", "Yulik", "Sasha"}}, kept)
}

func TestServiceLogsFilter(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	s := NewMemory(WithLogger(telemetry.NewLogger(&buf, "debug", false)))
	require.NoError(t, s.AddEdges(ctx, "Potato", []string{"Yulik"}))

	f, err := policy.Compile("degree == 1")
	require.NoError(t, err)
	_, err = s.FindPaths(ctx, "Potato", "Yulik", f)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `filter="degree == 1"`)
}

func TestServiceCancelledContext(t *testing.T) {
	s := chain(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.AddEdges(ctx, "Alex", nil), context.Canceled)
	_, err := s.FindPaths(ctx, "Potato", "Alex", nil)
	assert.ErrorIs(t, err, context.Canceled)

	ok, err := s.IsOnChain(context.Background(), "Alex")
	require.NoError(t, err)
	assert.False(t, ok, "cancelled AddEdges must not apply")
}

type closeCounter struct{ n int }

func (c *closeCounter) Close() error { c.n++; return nil }

func TestServiceClose(t *testing.T) {
	ctx := context.Background()
	c := &closeCounter{}
	s := New(graph.NewMemoryIndex(), WithCloser(c))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, c.n)

	assert.ErrorIs(t, s.AddEdges(ctx, "Potato", nil), ErrClosed)
	_, err := s.FindPaths(ctx, "Potato", "Sasha", nil)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Stats(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestServiceExportImport(t *testing.T) {
	ctx := context.Background()
	src := chain(t)
	store := storage.NewLocalStore(t.TempDir())

	require.NoError(t, src.Export(ctx, store, "snap.json"))

	dst := NewMemory()
	require.NoError(t, dst.Import(ctx, store, "snap.json"))

	for _, name := range []string{"Potato", "Sasha", "Boris", "Alex", "Yulik"} {
		want, err := src.OnChainNeighbors(ctx, name)
		require.NoError(t, err)
		got, err := dst.OnChainNeighbors(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, want, got, "on-chain neighbors of %s", name)
	}

	paths, err := dst.FindPaths(ctx, "Potato", "Alex", nil)
	require.NoError(t, err)
	assert.Equal(t, []graph.Path{{"Potato", "Sasha", "Boris", "Alex"}}, paths)
}

func TestServiceImportMissing(t *testing.T) {
	s := NewMemory()
	err := s.Import(context.Background(), storage.NewLocalStore(t.TempDir()), "absent.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

type brokenStore struct {
	*graph.MemoryStore
}

var errDisk = errors.New("disk gone")

func (brokenStore) Link(string, string) error { return errDisk }

func TestServiceStorageErrorsAreCounted(t *testing.T) {
	x := graph.NewIndex(brokenStore{graph.NewMemoryStore(nil)}, graph.NewMemoryStore(nil), graph.NewMemorySet(nil))
	s := New(x)

	before := testutil.ToFloat64(operationErrors.WithLabelValues("add_edges"))
	err := s.AddEdges(context.Background(), "Potato", []string{"Sasha"})
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, before+1, testutil.ToFloat64(operationErrors.WithLabelValues("add_edges")))
}

func TestServiceQueryMetrics(t *testing.T) {
	s := chain(t)
	ctx := context.Background()

	before := testutil.ToFloat64(pathQueries.WithLabelValues("3"))
	_, err := s.FindPaths(ctx, "Potato", "Alex", nil)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(pathQueries.WithLabelValues("3")))

	before = testutil.ToFloat64(pathQueries.WithLabelValues("none"))
	_, err = s.FindPaths(ctx, "Potato", "Hermit", nil)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(pathQueries.WithLabelValues("none")))
}

// Run with -race.
func TestServiceConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 50 {
				node := fmt.Sprintf("n%d-%d", w, i)
				assert.NoError(t, s.AddEdges(ctx, node, []string{"hub", fmt.Sprintf("n%d-%d", w, i+1)}))
			}
		}()
		go func() {
			defer wg.Done()
			for i := range 50 {
				_, err := s.FindPaths(ctx, fmt.Sprintf("n%d-%d", w, i), "hub", nil)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	// Every node declared hub, so hub's full and on-chain sets hold all 200.
	full, err := s.FullNeighbors(ctx, "hub")
	require.NoError(t, err)
	assert.Len(t, full, 200)

	onChain, err := s.OnChainNeighbors(ctx, "hub")
	require.NoError(t, err)
	assert.Len(t, onChain, 200)
}
