package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmunix/heroimport/internal/events"
	"github.com/vmunix/heroimport/internal/humans"
	"github.com/vmunix/heroimport/internal/importer"
)

//go:generate mockgen -destination=mocks/mock_deps.go -package=mocks . Imports

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Imports is the import pipeline as seen by the API.
type Imports interface {
	Submit(ctx context.Context, up importer.Upload, owner importer.Owner) (*importer.Job, error)
	SubmitBatch(ctx context.Context, uploads []importer.Upload, owner importer.Owner) ([]importer.SubmitResult, error)
	Progress(ctx context.Context, id int64) (*importer.Snapshot, error)
	History(ctx context.Context, owner importer.Owner) ([]*importer.Job, error)
	ClearHistory(ctx context.Context, owner importer.Owner) (int64, error)
	Stats() (importer.PoolStats, int)
}

// HumanReader reads stored humans.
type HumanReader interface {
	Get(ctx context.Context, id int64) (*humans.Human, error)
	List(ctx context.Context, f humans.Filter) ([]*humans.Human, int, error)
}

// EventReader pages through the persisted event log.
type EventReader interface {
	Recent(ctx context.Context, limit, offset int) ([]events.RawEvent, error)
	Count(ctx context.Context) (int, error)
	Since(ctx context.Context, t time.Time) ([]events.RawEvent, error)
	ForEntity(ctx context.Context, entityType string, entityID int64) ([]events.RawEvent, error)
}

// EventSource is the live event feed.
type EventSource interface {
	SubscribeAll(bufferSize int) <-chan events.Event
	SubscribeEntity(entityType string, entityID int64, bufferSize int) <-chan events.Event
	Unsubscribe(ch <-chan events.Event)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Imports Imports
	Humans  HumanReader

	// Optional dependencies (nil if not configured)
	EventLog EventReader
	Bus      EventSource
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Imports == nil {
		return fmt.Errorf("%w: imports", ErrMissingDependency)
	}
	if d.Humans == nil {
		return fmt.Errorf("%w: humans store", ErrMissingDependency)
	}
	return nil
}
