// Package dashboard serves the JSON view-model API consumed by cost
// dashboard frontends.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/karsidev/karsi/acceptance"
	"github.com/karsidev/karsi/backend"
	"github.com/karsidev/karsi/internal/daemon"
	"github.com/karsidev/karsi/types"
)

// Backend is the optimization API surface the dashboard reads from.
type Backend interface {
	FetchApplications(ctx context.Context, f backend.Filters) (*backend.ApplicationsResponse, error)
	FetchVMRecommendations(ctx context.Context, f backend.Filters) ([]types.VMRecommendation, error)
	FetchDBRecommendations(ctx context.Context, f backend.Filters, dbType string) ([]types.VMRecommendation, error)
	FetchStorageRecommendations(ctx context.Context, f backend.Filters) ([]types.StorageRecommendation, error)
	FetchIOPSRecommendations(ctx context.Context, f backend.Filters) ([]types.StorageRecommendation, error)
}

// Acceptor performs accept/revoke actions and reports acceptance state.
type Acceptor interface {
	Accept(ctx context.Context, assetID string, assetType types.Category, variant types.Variant) (types.AcceptanceState, error)
	Revoke(ctx context.Context, assetID string, assetType types.Category) (types.AcceptanceState, error)
	State(assetID string) (types.AcceptanceState, error)
}

// ActionRecorder counts confirmed accept/revoke actions.
type ActionRecorder interface {
	RecordAccept(ctx context.Context, variant string)
	RecordRevoke(ctx context.Context)
}

// HealthSource reports the background refresh daemon's state.
type HealthSource interface {
	Health() daemon.HealthStatus
	RefreshCount() int64
}

// Server is the dashboard HTTP server.
type Server struct {
	backend  Backend
	acceptor Acceptor
	recorder ActionRecorder
	health   HealthSource
	logger   zerolog.Logger
	started  time.Time
}

// NewServer creates a dashboard server. recorder and health may be nil
// when no emitter or daemon is attached.
func NewServer(b Backend, a Acceptor, recorder ActionRecorder, health HealthSource, logger zerolog.Logger) *Server {
	return &Server{
		backend:  b,
		acceptor: a,
		recorder: recorder,
		health:   health,
		logger:   logger,
		started:  time.Now(),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/applications", s.handleApplications)
	mux.HandleFunc("GET /api/applications/{name}", s.handleApplication)
	mux.HandleFunc("GET /api/recommendations/{category}", s.handleRecommendations)
	mux.HandleFunc("GET /api/assets/{id}", s.handleAsset)
	mux.HandleFunc("POST /api/assets/{id}/accept", s.handleAccept)
	mux.HandleFunc("POST /api/assets/{id}/revoke", s.handleRevoke)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	}
	if s.health != nil {
		h := s.health.Health()
		payload["daemon"] = map[string]any{
			"status":         h.Status,
			"uptime_seconds": h.Uptime,
			"refreshes":      s.health.RefreshCount(),
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

// mapActionError translates controller and backend failures onto HTTP
// status codes. Conflicts are client-retryable; backend failures are
// reported as bad gateway with the server's own message.
func (s *Server) mapActionError(w http.ResponseWriter, assetID string, err error) {
	switch {
	case errors.Is(err, acceptance.ErrInFlight):
		writeError(w, http.StatusConflict, "a request for this asset is already in flight")
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			s.logger.Error().Err(err).Str("asset_id", assetID).Msg("backend action failed")
			writeError(w, http.StatusBadGateway, apiErr.Error())
			return
		}
		s.logger.Error().Err(err).Str("asset_id", assetID).Msg("action failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
