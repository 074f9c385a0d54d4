package api

import (
	"net/http"

	"github.com/seenimoa/pulsewatch/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config config.Config `json:"config"`
}

// handleGetConfig returns the running configuration with credentials masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ConfigResponse{Config: s.cfg.Redacted()},
	})
}

// handleGetConfigKeys returns the status of all upstream credentials.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
