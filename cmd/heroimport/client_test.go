package main

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClientStatus_Success(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/status").
		ExpectGET().
		RespondJSON(map[string]any{
			"status":          "ok",
			"version":         "1.0.0",
			"pool":            map[string]int{"size": 5, "active": 2, "waiting": 1},
			"tracked_imports": 3,
		}).
		Build()
	defer srv.Close()

	status, err := NewClient(srv.URL, "user").Status()
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, 5, status.Pool.Size)
	assert.Equal(t, 2, status.Pool.Active)
	assert.Equal(t, 3, status.TrackedImports)
}

func TestClientStatus_ServerError(t *testing.T) {
	srv := newMockServer(t).
		RespondError(http.StatusInternalServerError, "database is locked").
		Build()
	defer srv.Close()

	_, err := NewClient(srv.URL, "user").Status()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "database is locked")
}

func TestClientStatus_PlainErrorBody(t *testing.T) {
	srv := newMockServer(t).
		Handler(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}).
		Build()
	defer srv.Close()

	_, err := NewClient(srv.URL, "user").Status()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error 502: upstream down")
}

func TestClientStatus_ConnectionError(t *testing.T) {
	srv := newMockServer(t).Build()
	srv.Close()

	_, err := NewClient(srv.URL, "user").Status()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestClientSubmit(t *testing.T) {
	file := writeTemp(t, "heroes.csv", "name\nAlice\n")

	srv := newMockServer(t).
		ExpectPath("/api/v1/imports").
		ExpectPOST().
		ExpectQuery("user", "alice smith").
		Handler(func(w http.ResponseWriter, r *http.Request) {
			f, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			data, _ := io.ReadAll(f)
			assert.Equal(t, "heroes.csv", header.Filename)
			assert.Equal(t, "name\nAlice\n", string(data))
			respondJSON(t, w, ImportResponse{ImportID: 4, FileName: "heroes.csv", Status: "RUNNING", Message: "Import started"})
		}).
		Build()
	defer srv.Close()

	resp, err := NewClient(srv.URL, "alice smith").Submit(file)
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.ImportID)
	assert.Equal(t, "RUNNING", resp.Status)
}

func TestClientSubmit_MissingFile(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:0", "user").Submit(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClientSubmitBatch(t *testing.T) {
	a := writeTemp(t, "a.csv", "x")
	b := writeTemp(t, "b.json", "[]")

	srv := newMockServer(t).
		ExpectPath("/api/v1/imports/batch").
		ExpectPOST().
		Handler(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Len(t, r.MultipartForm.File["files"], 2)
			respondJSON(t, w, BatchResponse{
				Imports: []ImportResponse{{ImportID: 1, FileName: "a.csv", Status: "RUNNING"}, {ImportID: 2, FileName: "b.json", Status: "RUNNING"}},
				Message: "Imports started",
			})
		}).
		Build()
	defer srv.Close()

	resp, err := NewClient(srv.URL, "user").SubmitBatch([]string{a, b})
	require.NoError(t, err)
	assert.Len(t, resp.Imports, 2)
}

func TestClientProgress(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/imports/9/progress").
		ExpectGET().
		RespondJSON(ProgressResponse{ImportID: 9, Status: "COMPLETED", Total: 2, Success: 2, Processed: 2, Percent: 100}).
		Build()
	defer srv.Close()

	p, err := NewClient(srv.URL, "user").Progress(9)
	require.NoError(t, err)
	assert.True(t, p.Finished())
	assert.Equal(t, 100, p.Percent)
}

func TestClientClearHistory_Forbidden(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/imports/history").
		ExpectDELETE().
		ExpectQuery("user", "bob").
		RespondError(http.StatusForbidden, "Only admin can clear import history").
		Build()
	defer srv.Close()

	_, err := NewClient(srv.URL, "bob").ClearHistory()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "Only admin")
}

func TestClientEvents(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/events").
		ExpectQuery("limit", "5").
		ExpectQuery("offset", "10").
		RespondJSON(ListEventsResponse{Total: 0, Limit: 5, Offset: 10}).
		Build()
	defer srv.Close()

	resp, err := NewClient(srv.URL, "user").Events(5, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Limit)
}
