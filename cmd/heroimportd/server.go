package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/heroimport/internal/api/v1"
	"github.com/vmunix/heroimport/internal/config"
	"github.com/vmunix/heroimport/internal/events"
	"github.com/vmunix/heroimport/internal/handlers"
	"github.com/vmunix/heroimport/internal/humans"
	"github.com/vmunix/heroimport/internal/importer"
	"github.com/vmunix/heroimport/internal/migrations"
	"github.com/vmunix/heroimport/internal/server"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, cfg config.ServerConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader { // Only capture first WriteHeader call
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Flush keeps the event stream working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijack not supported")
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", wrapped.Header().Get(v1.RequestIDHeader),
		)
	})
}

func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return config.Default(), "", nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// dsn builds the connection string for path. Transactions begin IMMEDIATE so
// concurrent import workers queue on busy_timeout instead of failing with
// SQLITE_BUSY when a read-then-write transaction is upgraded.
func dsn(path string) string {
	return path + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func runServer(configPath string) error {
	cfg, source, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := newLogger(os.Stdout, cfg.Server)
	if source == "" {
		logger.Warn("no config file found, using defaults")
	}

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Stores ===
	humanStore := humans.NewStore(db)
	historyStore := importer.NewHistoryStore(db)
	eventLog := events.NewEventLog(db)

	if n, err := historyStore.FailInterrupted(ctx, "interrupted by restart"); err != nil {
		return fmt.Errorf("recover jobs: %w", err)
	} else if n > 0 {
		logger.Warn("marked interrupted imports as failed", "count", n)
	}

	// === Events ===
	bus := events.NewBus(eventLog, logger.With("component", "bus"))
	bus.Transient(events.EventImportProgress)
	defer func() { _ = bus.Close() }()

	// === Services ===
	tracker := importer.NewTracker()
	pool := importer.NewPool(cfg.Import.Workers, logger.With("component", "pool"))
	imp := importer.New(importer.Deps{
		Records: humanStore,
		History: historyStore,
		Tracker: tracker,
		Pool:    pool,
		Bus:     bus,
	}, importer.Config{
		MaxBatchFiles:   cfg.Import.MaxBatchFiles,
		RecordDelay:     cfg.Import.RecordDelay.Duration,
		ContinueOnError: cfg.Import.ContinueOnError,
	}, logger.With("component", "importer"))

	// === HTTP Setup ===
	api, err := v1.New(v1.ServerDeps{
		Imports:  imp,
		Humans:   humanStore,
		EventLog: eventLog,
		Bus:      bus,
	}, v1.Config{
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		IsAdmin:        cfg.Auth.IsAdmin,
		StreamBuffer:   cfg.Events.Buffer,
		Version:        version,
	}, logger.With("component", "api"))
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	// === Background Handlers ===
	pruner := handlers.NewPruneHandler(bus, tracker, eventLog, handlers.PruneConfig{
		Interval:    cfg.Import.PruneInterval.Duration,
		SnapshotTTL: cfg.Import.SnapshotTTL.Duration,
		Retention:   cfg.Events.Retention.Duration,
	}, logger.With("component", "prune"))

	logger.Info("server starting",
		"addr", cfg.Addr(),
		"config", source,
		"database", cfg.Database.Path,
		"workers", cfg.Import.Workers,
		"continue_on_error", cfg.Import.ContinueOnError,
		"log_level", cfg.Server.LogLevel,
	)

	runner := server.NewRunner(server.Config{Addr: cfg.Addr()},
		logRequests(api.Handler(), logger),
		pool,
		[]handlers.Handler{pruner},
		logger.With("component", "runner"))
	if err := runner.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
