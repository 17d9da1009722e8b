package importer

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/heroimport/internal/events"
	"github.com/vmunix/heroimport/internal/humans"
	"github.com/vmunix/heroimport/internal/migrations"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err, "open db")
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err, "apply schema")
	return db
}

type testEnv struct {
	imp     *Importer
	db      *sql.DB
	records *humans.Store
	history *HistoryStore
	tracker *Tracker
	pool    *Pool
	bus     *events.Bus
}

func setupTestImporter(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	env := &testEnv{
		db:      db,
		records: humans.NewStore(db),
		history: NewHistoryStore(db),
		tracker: NewTracker(),
		pool:    NewPool(DefaultWorkers, testLogger()),
		bus:     events.NewBus(events.NewEventLog(db), testLogger()),
	}
	env.imp = New(Deps{
		Records: env.records,
		History: env.history,
		Tracker: env.tracker,
		Pool:    env.pool,
		Bus:     env.bus,
	}, cfg, testLogger())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = env.pool.Wait(ctx)
		_ = env.bus.Close()
	})
	return env
}

// waitForTerminal polls progress until the job leaves RUNNING.
func (e *testEnv) waitForTerminal(t *testing.T, id int64) *Snapshot {
	t.Helper()
	var last *Snapshot
	require.Eventually(t, func() bool {
		s, err := e.imp.Progress(context.Background(), id)
		if err != nil {
			return false
		}
		last = s
		return s.Status.IsTerminal()
	}, 5*time.Second, 2*time.Millisecond, "job %d did not finish", id)
	return last
}

const csvHeader = "name,coordinates.x,coordinates.y,realHero,car.name,mood,impactSpeed,minutesOfWaiting\n"

var alice = Owner{Name: "alice"}
var bob = Owner{Name: "bob"}
var admin = Owner{Name: "admin", IsAdmin: true}
