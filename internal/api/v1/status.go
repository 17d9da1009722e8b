package v1

import (
	"net/http"

	"github.com/vmunix/heroimport/internal/importer"
)

// StatusResponse is the response for GET /status.
type StatusResponse struct {
	Status         string             `json:"status"`
	Version        string             `json:"version,omitempty"`
	Pool           importer.PoolStats `json:"pool"`
	TrackedImports int                `json:"tracked_imports"`
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	pool, tracked := s.deps.Imports.Stats()
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:         "ok",
		Version:        s.cfg.Version,
		Pool:           pool,
		TrackedImports: tracked,
	})
}
