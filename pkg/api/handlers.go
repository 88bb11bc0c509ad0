package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/DrSkyle/chainpath/pkg/graph"
	"github.com/DrSkyle/chainpath/pkg/network"
	"github.com/DrSkyle/chainpath/pkg/policy"
)

// maxBodyBytes caps an AddEdges request body.
const maxBodyBytes = 1 << 20

// AddEdgesRequest is the body of POST /v1/nodes/{name}/edges.
type AddEdgesRequest struct {
	Neighbors []string `json:"neighbors" validate:"dive,required"`
}

// PathQuery holds the GET /v1/paths parameters.
type PathQuery struct {
	From   string `validate:"required"`
	To     string `validate:"required"`
	Filter string
}

// BatchRequest is the body of POST /v1/paths/batch.
type BatchRequest struct {
	Queries []network.Query `json:"queries" validate:"required,min=1,max=1000,dive"`
	Filter  string          `json:"filter"`
}

type BatchResponse struct {
	Answers []network.Answer `json:"answers"`
}

type PathsResponse struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Paths []graph.Path `json:"paths"`
}

type NeighborsResponse struct {
	Node      string   `json:"node"`
	Neighbors []string `json:"neighbors"`
}

type OnChainResponse struct {
	Node    string `json:"node"`
	OnChain bool   `json:"on_chain"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// nodeName reads the {name} segment. chi matches on RawPath when the request
// has one, leaving the segment escaped; otherwise it is already decoded and
// must not be unescaped again.
func nodeName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

func (rt *Router) addEdges(w http.ResponseWriter, r *http.Request) {
	node, err := nodeName(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid node name")
		return
	}

	var req AddEdgesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	if err := rt.svc.AddEdges(r.Context(), node, req.Neighbors); err != nil {
		rt.serviceError(w, r, "add edges", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) findPaths(w http.ResponseWriter, r *http.Request) {
	q := PathQuery{
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		Filter: r.URL.Query().Get("filter"),
	}
	if err := rt.validate.Struct(q); err != nil {
		respondError(w, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	var filter *policy.PathFilter
	if q.Filter != "" {
		f, err := policy.Compile(q.Filter)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter = f
	}

	paths, err := rt.svc.FindPaths(r.Context(), q.From, q.To, filter)
	if err != nil {
		rt.serviceError(w, r, "find paths", err)
		return
	}
	if paths == nil {
		paths = []graph.Path{}
	}
	respondJSON(w, http.StatusOK, PathsResponse{From: q.From, To: q.To, Paths: paths})
}

func (rt *Router) findPathsBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	var filter *policy.PathFilter
	if req.Filter != "" {
		f, err := policy.Compile(req.Filter)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter = f
	}

	answers, err := rt.svc.FindPathsBatch(r.Context(), req.Queries, filter, 0)
	if err != nil {
		rt.serviceError(w, r, "find paths", err)
		return
	}
	respondJSON(w, http.StatusOK, BatchResponse{Answers: answers})
}

func (rt *Router) fullNeighbors(w http.ResponseWriter, r *http.Request) {
	rt.neighbors(w, r, rt.svc.FullNeighbors)
}

func (rt *Router) onChainNeighbors(w http.ResponseWriter, r *http.Request) {
	rt.neighbors(w, r, rt.svc.OnChainNeighbors)
}

func (rt *Router) neighbors(w http.ResponseWriter, r *http.Request, get func(ctx context.Context, name string) ([]string, error)) {
	node, err := nodeName(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid node name")
		return
	}
	names, err := get(r.Context(), node)
	if err != nil {
		rt.serviceError(w, r, "neighbors", err)
		return
	}
	respondJSON(w, http.StatusOK, NeighborsResponse{Node: node, Neighbors: names})
}

func (rt *Router) isOnChain(w http.ResponseWriter, r *http.Request) {
	node, err := nodeName(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid node name")
		return
	}
	ok, err := rt.svc.IsOnChain(r.Context(), node)
	if err != nil {
		rt.serviceError(w, r, "on-chain status", err)
		return
	}
	respondJSON(w, http.StatusOK, OnChainResponse{Node: node, OnChain: ok})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	st, err := rt.svc.Stats(r.Context())
	if err != nil {
		rt.serviceError(w, r, "stats", err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (rt *Router) serviceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, policy.ErrNotBoolean), errors.Is(err, policy.ErrEvaluation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, network.ErrClosed):
		respondError(w, http.StatusServiceUnavailable, "service is shutting down")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		rt.logger.Error("request failed",
			slog.String("action", action),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg})
}
