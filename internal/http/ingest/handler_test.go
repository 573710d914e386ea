package ingest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/marches/internal/http/ingest"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

type fakeFiles struct {
	path  string
	force bool
	stats ledger.Stats
	err   error
}

func (f *fakeFiles) SyncFile(_ context.Context, path string, force bool) (ledger.Stats, error) {
	f.path, f.force = path, force
	f.stats.SourceKey = path

	return f.stats, f.err
}

type fakeCache struct {
	key     string
	rows    []ledger.Row
	opts    ledger.SyncOptions
	snap    *ledger.Snapshot
	limit   int
	cleared bool
}

func (f *fakeCache) Sync(_ context.Context, key string, rows []ledger.Row, opts ledger.SyncOptions) ledger.Stats {
	f.key, f.rows, f.opts = key, rows, opts
	return ledger.Stats{SourceKey: key, Status: ledger.StatusSuccess, Inserted: len(rows)}
}

func (f *fakeCache) LatestSnapshot(_ context.Context, key string) (*ledger.Snapshot, error) {
	if f.snap == nil || f.snap.SourceKey != key {
		return nil, ledger.ErrNoSnapshot
	}

	return f.snap, nil
}

func (f *fakeCache) History(_ context.Context, key string, limit int) ([]*ledger.Snapshot, error) {
	f.limit = limit

	snap, err := f.LatestSnapshot(context.Background(), key)
	if err != nil {
		return nil, nil
	}

	return []*ledger.Snapshot{snap}, nil
}

func (f *fakeCache) Clear(context.Context) error {
	f.cleared = true
	return nil
}

func router(h *ingest.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/sync", h.Routes)

	return r
}

func uploadRequest(t *testing.T, name, content, force string) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)

	if force != "" {
		require.NoError(t, mw.WriteField("force", force))
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/sync/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func TestHandler_Upload(t *testing.T) {
	dir := t.TempDir()
	files := &fakeFiles{stats: ledger.Stats{Status: ledger.StatusSuccess, Inserted: 3}}
	h := ingest.NewHandler(files, &fakeCache{}, "", dir)

	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, uploadRequest(t, "../../suivi.csv", "a;b\n", "true"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, filepath.Join(dir, "suivi.csv"), files.path, "upload kept under its base name")
	assert.True(t, files.force)

	saved, err := os.ReadFile(files.path)
	require.NoError(t, err)
	assert.Equal(t, "a;b\n", string(saved))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.InDelta(t, 3, resp["inserted"], 0)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left behind")
}

func TestHandler_UploadRejected(t *testing.T) {
	files := &fakeFiles{}
	h := ingest.NewHandler(files, &fakeCache{}, "", t.TempDir())

	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, uploadRequest(t, "notes.pdf", "%PDF", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, files.path)

	files.err = errors.New("open workbook: zip: not a valid zip file")
	rec = httptest.NewRecorder()
	router(h).ServeHTTP(rec, uploadRequest(t, "suivi.xlsx", "garbage", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_SyncSource(t *testing.T) {
	t.Run("NotConfigured", func(t *testing.T) {
		h := ingest.NewHandler(&fakeFiles{}, &fakeCache{}, "", t.TempDir())

		rec := httptest.NewRecorder()
		router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/source", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		files := &fakeFiles{stats: ledger.Stats{Status: ledger.StatusError, Message: "database is locked"}}
		h := ingest.NewHandler(files, &fakeCache{}, "/data/suivi.xlsx", t.TempDir())

		rec := httptest.NewRecorder()
		router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/source?force=1", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "database is locked")
		assert.Equal(t, "/data/suivi.xlsx", files.path)
		assert.True(t, files.force)
	})
}

func TestHandler_SyncRows(t *testing.T) {
	cache := &fakeCache{}
	h := ingest.NewHandler(&fakeFiles{}, cache, "", t.TempDir())

	body := `{"rows":[{"contract":"2024_17_1","ttc_amount":120.5,"mandate":"M1"},{"contract":"2025_12"}]}`

	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/rows", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "synthetic", cache.key)
	assert.True(t, cache.opts.Force)
	require.Len(t, cache.rows, 2)
	assert.Equal(t, ledger.Row{Contract: "2024_17_1", TTCAmount: 120.5, Mandate: "M1"}, cache.rows[0])

	rec = httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/rows", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Status(t *testing.T) {
	cache := &fakeCache{snap: &ledger.Snapshot{
		ID:        uuid.Must(uuid.NewV7()),
		SourceKey: "/data/suivi.xlsx",
		RowCount:  42,
		Status:    ledger.StatusSuccess,
	}}
	h := ingest.NewHandler(&fakeFiles{}, cache, "/data/suivi.xlsx", t.TempDir())

	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sync/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"row_count":42`)

	rec = httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sync/status?key=other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sync/history?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, cache.limit)

	rec = httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sync/history?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Clear(t *testing.T) {
	cache := &fakeCache{}
	h := ingest.NewHandler(&fakeFiles{}, cache, "", t.TempDir())

	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sync/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, cache.cleared)
}
