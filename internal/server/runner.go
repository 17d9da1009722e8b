// Package server runs the HTTP surface and background handlers under one
// lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/vmunix/heroimport/internal/handlers"
	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout bounds HTTP shutdown plus the job drain.
const DefaultShutdownTimeout = 30 * time.Second

// Config for the runner.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Drainer is the worker pool as seen at shutdown.
type Drainer interface {
	Close()
	Wait(ctx context.Context) error
}

// Runner manages the HTTP server, background handlers and shutdown.
type Runner struct {
	config   Config
	handler  http.Handler
	pool     Drainer
	handlers []handlers.Handler
	logger   *slog.Logger
}

// NewRunner creates a new runner. pool may be nil.
func NewRunner(cfg Config, handler http.Handler, pool Drainer, hs []handlers.Handler, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Runner{
		config:   cfg,
		handler:  handler,
		pool:     pool,
		handlers: hs,
		logger:   logger,
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.config.Addr, err)
	}
	return r.Serve(ctx, ln)
}

// Serve runs every component on ln until ctx is canceled or one of them
// fails. On the way out the HTTP server stops accepting requests first, then
// the pool stops taking jobs and running jobs get the rest of the shutdown
// timeout to finish. A clean shutdown returns nil.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	for _, h := range r.handlers {
		g.Go(func() error {
			r.logger.Debug("handler starting", "handler", h.Name())
			if err := h.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("handler %s: %w", h.Name(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		r.shutdown(srv)
		return nil
	})

	return g.Wait()
}

func (r *Runner) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
	defer cancel()

	r.logger.Info("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		r.logger.Error("http shutdown", "error", err)
	}

	if r.pool == nil {
		return
	}
	r.pool.Close()
	if err := r.pool.Wait(ctx); err != nil {
		r.logger.Warn("import jobs still running at shutdown", "error", err)
		return
	}
	r.logger.Info("import jobs drained")
}
