package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"Mansoor88-6/activity-agent/internal/health"
	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// CollectRequest is the body of POST /api/v1/collect
type CollectRequest struct {
	TimerID string   `json:"timerId"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Kinds   []string `json:"kinds,omitempty"`
}

// HealthResponse is the body of GET /api/v1/health
type HealthResponse struct {
	State string `json:"state"`
	models.ConnectionHealth
}

// EnabledRequest is the body of POST /api/v1/health/enabled
type EnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// Requester emits collection requests
type Requester interface {
	Request(ctx context.Context, kind models.ActivityKind, req models.CollectionRequest) error
}

// HealthController exposes and toggles daemon supervision
type HealthController interface {
	Status() models.ConnectionHealth
	State() health.State
	SetEnabled(ctx context.Context, enabled bool) health.State
}

// ControlServer lets local tools request collections and toggle daemon
// supervision
type ControlServer struct {
	requester Requester
	health    HealthController
	logger    *zap.Logger
}

// NewControlServer creates a new control server
func NewControlServer(requester Requester, health HealthController, logger *zap.Logger) *ControlServer {
	return &ControlServer{
		requester: requester,
		health:    health,
		logger:    logger,
	}
}

// ServeHTTP implements http.Handler
func (s *ControlServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.URL.Path {
	case "/api/v1/collect":
		if r.Method == http.MethodPost {
			s.handleCollect(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "/api/v1/health":
		if r.Method == http.MethodGet {
			s.handleHealth(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "/api/v1/health/enabled":
		if r.Method == http.MethodPost {
			s.handleSetEnabled(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func (s *ControlServer) setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func (s *ControlServer) handleCollect(w http.ResponseWriter, r *http.Request) {
	var req CollectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("Failed to decode collect request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.TimerID == "" {
		http.Error(w, "Missing timerId", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		http.Error(w, "Invalid start", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		http.Error(w, "Invalid end", http.StatusBadRequest)
		return
	}
	dateRange := models.DateRange{Start: start.UTC(), End: end.UTC()}
	if err := dateRange.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kinds := models.AllKinds
	if len(req.Kinds) > 0 {
		kinds = make([]models.ActivityKind, 0, len(req.Kinds))
		for _, k := range req.Kinds {
			kind, err := models.ParseActivityKind(k)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			kinds = append(kinds, kind)
		}
	}

	requested := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		collectionReq := models.CollectionRequest{TimerID: req.TimerID, DateRange: dateRange}
		if err := s.requester.Request(r.Context(), kind, collectionReq); err != nil {
			s.logger.Error("Failed to emit collection request",
				zap.String("channel", kind.RequestChannel()),
				zap.Error(err),
			)
			http.Error(w, "Collection unavailable", http.StatusServiceUnavailable)
			return
		}
		requested = append(requested, string(kind))
	}

	s.logger.Info("Collection requested",
		zap.String("timer_id", req.TimerID),
		zap.Strings("kinds", requested),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "accepted",
		"kinds":  requested,
	})
}

func (s *ControlServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeHealth(w, s.health.State())
}

func (s *ControlServer) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	var req EnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	state := s.health.SetEnabled(r.Context(), *req.Enabled)
	s.logger.Info("Daemon supervision toggled",
		zap.Bool("enabled", *req.Enabled),
		zap.String("state", state.String()),
	)
	s.writeHealth(w, state)
}

func (s *ControlServer) writeHealth(w http.ResponseWriter, state health.State) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		State:            state.String(),
		ConnectionHealth: s.health.Status(),
	})
}
