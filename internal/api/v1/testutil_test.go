package v1

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/heroimport/internal/config"
	"github.com/vmunix/heroimport/internal/events"
	"github.com/vmunix/heroimport/internal/humans"
	"github.com/vmunix/heroimport/internal/importer"
	"github.com/vmunix/heroimport/internal/migrations"
)

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
	srv     *Server
	handler http.Handler
	imp     *importer.Importer
	humans  *humans.Store
	log     *events.EventLog
	bus     *events.Bus
	pool    *importer.Pool
}

func setupTestServer(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	env := &testEnv{
		humans: humans.NewStore(db),
		log:    events.NewEventLog(db),
		pool:   importer.NewPool(importer.DefaultWorkers, testLogger()),
	}
	env.bus = events.NewBus(env.log, testLogger())
	env.bus.Transient(events.EventImportProgress)
	env.imp = importer.New(importer.Deps{
		Records: env.humans,
		History: importer.NewHistoryStore(db),
		Tracker: importer.NewTracker(),
		Pool:    env.pool,
		Bus:     env.bus,
	}, importer.Config{RecordDelay: time.Millisecond}, testLogger())

	if cfg.IsAdmin == nil {
		cfg.IsAdmin = config.AuthConfig{Admins: []string{"admin"}}.IsAdmin
	}
	srv, err := New(ServerDeps{
		Imports:  env.imp,
		Humans:   env.humans,
		EventLog: env.log,
		Bus:      env.bus,
	}, cfg, testLogger())
	require.NoError(t, err)
	env.srv = srv
	env.handler = srv.Handler()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		env.pool.Close()
		_ = env.pool.Wait(ctx)
		_ = env.bus.Close()
	})
	return env
}

type formFile struct {
	field string
	name  string
	data  string
}

func multipartBody(t *testing.T, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, path string, files ...formFile) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return e.do(t, req)
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

// waitForTerminal polls the progress endpoint until the job leaves RUNNING.
func (e *testEnv) waitForTerminal(t *testing.T, id int64) importer.Snapshot {
	t.Helper()
	var snap importer.Snapshot
	require.Eventually(t, func() bool {
		w := e.get(t, "/api/v1/imports/"+itoa(id)+"/progress")
		if w.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
			return false
		}
		return snap.Status.IsTerminal()
	}, 5*time.Second, 5*time.Millisecond, "import %d did not finish", id)
	return snap
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

const csvHeader = "name,coordinates.x,coordinates.y,realHero,car.name,mood,impactSpeed,minutesOfWaiting\n"
