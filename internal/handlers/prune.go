package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/vmunix/heroimport/internal/events"
)

// SnapshotPruner drops finished progress snapshots.
type SnapshotPruner interface {
	PruneFinished(olderThan time.Duration) int
}

// EventPruner deletes persisted events.
type EventPruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// PruneConfig configures the prune handler. A zero TTL or retention
// disables that half of the work.
type PruneConfig struct {
	Interval    time.Duration
	SnapshotTTL time.Duration
	Retention   time.Duration
}

// PruneHandler periodically forgets finished progress snapshots and deletes
// old events. A history clear triggers an immediate snapshot sweep.
type PruneHandler struct {
	*BaseHandler
	snapshots SnapshotPruner
	events    EventPruner
	config    PruneConfig
}

// NewPruneHandler creates a prune handler. Either pruner may be nil.
func NewPruneHandler(bus *events.Bus, snapshots SnapshotPruner, eventLog EventPruner, config PruneConfig, logger *slog.Logger) *PruneHandler {
	if config.Interval <= 0 {
		config.Interval = 10 * time.Minute
	}
	return &PruneHandler{
		BaseHandler: NewBaseHandler(bus, logger),
		snapshots:   snapshots,
		events:      eventLog,
		config:      config,
	}
}

// Name returns the handler name.
func (h *PruneHandler) Name() string {
	return "prune"
}

// Start prunes once, then on every interval until ctx is done.
func (h *PruneHandler) Start(ctx context.Context) error {
	var cleared <-chan events.Event
	if h.Bus() != nil {
		ch := h.Bus().Subscribe(events.EventHistoryCleared, 4)
		defer h.Bus().Unsubscribe(ch)
		cleared = ch
	}

	h.Prune(ctx)

	ticker := time.NewTicker(h.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Prune(ctx)
		case e, ok := <-cleared:
			if !ok {
				cleared = nil
				continue
			}
			h.Logger().Debug("history cleared, sweeping snapshots", "event_type", e.EventType())
			h.pruneSnapshots(0)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Prune runs one sweep.
func (h *PruneHandler) Prune(ctx context.Context) {
	if h.config.SnapshotTTL > 0 {
		h.pruneSnapshots(h.config.SnapshotTTL)
	}

	if h.events != nil && h.config.Retention > 0 {
		n, err := h.events.Prune(ctx, h.config.Retention)
		if err != nil {
			h.Logger().Error("failed to prune events", "error", err)
		} else if n > 0 {
			h.Logger().Info("pruned events", "count", n, "retention", h.config.Retention)
		}
	}
}

func (h *PruneHandler) pruneSnapshots(olderThan time.Duration) {
	if h.snapshots == nil {
		return
	}
	if n := h.snapshots.PruneFinished(olderThan); n > 0 {
		h.Logger().Info("pruned progress snapshots", "count", n)
	}
}
