package network

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/DrSkyle/chainpath/pkg/graph"
)

var (
	// edgesAdded counts declared neighbor entries, repeats included.
	edgesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainpath_edges_added_total",
		Help: "Neighbor entries passed to AddEdges",
	})

	// pathQueries counts path queries by the degree of the shortest result.
	pathQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainpath_path_queries_total",
		Help: "Path queries by shortest result degree",
	}, []string{"degree"})

	pathQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chainpath_path_query_duration_seconds",
		Help:    "Path query latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
	})

	operationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainpath_operation_errors_total",
		Help: "Failed operations by name",
	}, []string{"operation"})
)

func degreeLabel(paths []graph.Path) string {
	if len(paths) == 0 {
		return "none"
	}
	return strconv.Itoa(paths[0].Degree())
}
