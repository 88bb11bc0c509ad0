// Package api exposes a network.Service over HTTP.
//
// Node names travel as one path-escaped segment. Names used over HTTP must be
// non-empty: a route cannot address the empty name, and validation rejects
// empty neighbors and path endpoints. The graph itself accepts "".
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DrSkyle/chainpath/pkg/network"
	"github.com/DrSkyle/chainpath/pkg/telemetry"
	"github.com/DrSkyle/chainpath/pkg/version"
)

// Options tunes the router.
type Options struct {
	// AllowedOrigins for CORS. Empty disables the CORS middleware.
	AllowedOrigins []string
	// RequestTimeout bounds every request. Zero means no limit.
	RequestTimeout time.Duration
}

// Router wires HTTP routes to a Service.
type Router struct {
	svc      *network.Service
	logger   *slog.Logger
	validate *validator.Validate
	opts     Options
}

func NewRouter(svc *network.Service, logger *slog.Logger, opts Options) *Router {
	if logger == nil {
		logger = telemetry.Discard()
	}
	return &Router{
		svc:      svc,
		logger:   logger,
		validate: validator.New(),
		opts:     opts,
	}
}

// Setup builds the handler tree.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(rt.logger))
	if rt.opts.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.opts.RequestTimeout))
	}
	if len(rt.opts.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.health)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/v1", func(r chi.Router) {
		r.Get("/paths", rt.findPaths)
		r.Post("/paths/batch", rt.findPathsBatch)
		r.Get("/stats", rt.stats)
		r.Route("/nodes/{name}", func(r chi.Router) {
			r.Post("/edges", rt.addEdges)
			r.Get("/neighbors", rt.fullNeighbors)
			r.Get("/on-chain-neighbors", rt.onChainNeighbors)
			r.Get("/on-chain", rt.isOnChain)
		})
	})

	return router
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Current,
	})
}

func requestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
