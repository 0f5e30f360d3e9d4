// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/hopgraph/internal/app"
	"github.com/okian/hopgraph/internal/domain/types"
	"github.com/okian/hopgraph/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	SearchOrganizations(ctx context.Context, name string) ([]types.Organization, error)
	Transitions(ctx context.Context, q service.TransitionsQuery) (types.Transitions, error)
	EmployeeTransitions(ctx context.Context, q service.EmployeeQuery) ([]types.EmployeeTransition, error)
	RelatedBackground(ctx context.Context, q service.RelatedQuery) (types.RelatedBackground, error)
}

// StatsProvider exposes service settings for diagnostics.
type StatsProvider interface {
	GetStats() map[string]any
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps   Dependencies
	stats  StatsProvider
	health *HealthHandler
	log    logger.Logger
}

// NewServer creates a new API server. stats may be nil.
func NewServer(deps Dependencies, stats StatsProvider) *Server {
	return &Server{
		deps:   deps,
		stats:  stats,
		health: NewHealthHandler(),
		log:    logger.Named("api"),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.handleStats, "stats"))
	mux.HandleFunc("/organizations", s.route(s.handleOrganizations, "organizations"))
	mux.HandleFunc("/org-transitions", s.route(s.handleOrgTransitions, "org_transitions"))
	mux.HandleFunc("/employee-transitions", s.route(s.handleEmployeeTransitions, "employee_transitions"))
	mux.HandleFunc("/related-background", s.route(s.handleRelatedBackground, "related_background"))
}

// route applies the request id and metrics middleware and rejects
// everything but GET.
func (s *Server) route(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		next(w, r)
	}, endpoint))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats := map[string]any{}
	if s.stats != nil {
		stats = s.stats.GetStats()
	}
	writeJSON(w, http.StatusOK, stats)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail translates a service error. Invalid queries are the caller's fault;
// everything else is ours and is not echoed back.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", nil)
	default:
		s.log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("requestID", RequestID(r.Context())),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
