// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/heroimport/internal/humans"
	"github.com/vmunix/heroimport/internal/importer"
)

// DefaultUser is the owner assumed when a request names none.
const DefaultUser = "user"

// Config holds API server configuration.
type Config struct {
	MaxUploadBytes  int64                  // per request, 0 means 10 MiB
	IsAdmin         func(name string) bool // nil grants nobody administrator rights
	StreamBuffer    int                    // per-subscriber event buffer for the stream
	StreamHeartbeat time.Duration          // keep-alive comment interval, 0 means 15s
	Version         string
}

// Server is the v1 API server.
type Server struct {
	deps   ServerDeps
	cfg    Config
	logger *slog.Logger
}

// New creates a v1 API server from its dependencies.
func New(deps ServerDeps, cfg Config, logger *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.StreamBuffer <= 0 {
		cfg.StreamBuffer = 64
	}
	if cfg.StreamHeartbeat <= 0 {
		cfg.StreamHeartbeat = 15 * time.Second
	}
	return &Server{deps: deps, cfg: cfg, logger: logger}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Imports
	mux.HandleFunc("POST /api/v1/imports", s.submitImport)
	mux.HandleFunc("POST /api/v1/imports/batch", s.submitBatch)
	mux.HandleFunc("GET /api/v1/imports/{id}/progress", s.getProgress)
	mux.HandleFunc("GET /api/v1/imports/{id}/events", s.requireEventLog(s.importEvents))
	mux.HandleFunc("GET /api/v1/imports/history", s.listHistory)
	mux.HandleFunc("DELETE /api/v1/imports/history", s.clearHistory)

	// Humans
	mux.HandleFunc("GET /api/v1/humans", s.listHumans)
	mux.HandleFunc("GET /api/v1/humans/{id}", s.getHuman)

	// Events
	mux.HandleFunc("GET /api/v1/events", s.requireEventLog(s.listEvents))
	mux.HandleFunc("GET /api/v1/events/stream", s.requireBus(s.streamEvents))

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Handler returns the API routes wrapped in the request ID middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return RequestID(mux)
}

// owner resolves the caller from the user query parameter.
func (s *Server) owner(r *http.Request) importer.Owner {
	name := strings.TrimSpace(r.URL.Query().Get("user"))
	if name == "" {
		name = DefaultUser
	}
	isAdmin := s.cfg.IsAdmin != nil && s.cfg.IsAdmin(name)
	return importer.Owner{Name: name, IsAdmin: isAdmin}
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDomainError maps pipeline errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *importer.FormatError
	switch {
	case errors.As(err, &fe) && errors.Is(err, importer.ErrEmptyFile):
		writeError(w, http.StatusBadRequest, "EMPTY_FILE", "File is empty")
	case errors.As(err, &fe):
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "File must be CSV or JSON")
	case errors.Is(err, importer.ErrNoFiles):
		writeError(w, http.StatusBadRequest, "NO_FILES", "No files provided")
	case errors.Is(err, importer.ErrTooManyFiles):
		writeError(w, http.StatusBadRequest, "TOO_MANY_FILES", err.Error())
	case errors.Is(err, importer.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Only admin can clear import history")
	case errors.Is(err, importer.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Import not found")
	case errors.Is(err, humans.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Human not found")
	case errors.Is(err, importer.ErrPoolClosed):
		writeError(w, http.StatusServiceUnavailable, "SHUTTING_DOWN", "Server is shutting down")
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFrom(r.Context()),
			"error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// pathID extracts the integer {id} from the URL path.
func pathID(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return 0, errors.New("missing path parameter: id")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", idStr)
	}
	return id, nil
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryString extracts an optional string from query string.
func queryString(r *http.Request, name string) *string {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil
	}
	return &val
}
