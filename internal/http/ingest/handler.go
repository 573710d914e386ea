// Package ingest serves synchronisation of the row cache.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/marches/internal/http/respond"
	"github.com/MrJamesThe3rd/marches/internal/importer"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

const (
	maxUpload       = 64 << 20
	defaultRowsKey  = "synthetic"
	defaultHistoryN = 20
)

type FileSyncer interface {
	SyncFile(ctx context.Context, path string, force bool) (ledger.Stats, error)
}

type Cache interface {
	Sync(ctx context.Context, sourceKey string, rows []ledger.Row, opts ledger.SyncOptions) ledger.Stats
	LatestSnapshot(ctx context.Context, sourceKey string) (*ledger.Snapshot, error)
	History(ctx context.Context, sourceKey string, limit int) ([]*ledger.Snapshot, error)
	Clear(ctx context.Context) error
}

type Handler struct {
	files     FileSyncer
	cache     Cache
	source    string
	uploadDir string
}

// NewHandler serves syncs of uploads, kept in uploadDir, and of the
// configured source path. source may be empty.
func NewHandler(files FileSyncer, cache Cache, source, uploadDir string) *Handler {
	return &Handler{
		files:     files,
		cache:     cache,
		source:    source,
		uploadDir: uploadDir,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
	r.Post("/source", h.syncSource)
	r.Post("/rows", h.syncRows)
	r.Get("/status", h.status)
	r.Get("/history", h.history)
	r.Delete("/", h.clear)
}

type statsResponse struct {
	SourceKey  string        `json:"source_key"`
	Status     ledger.Status `json:"status"`
	Message    string        `json:"message"`
	Inserted   int           `json:"inserted"`
	Deleted    int           `json:"deleted"`
	Unchanged  int           `json:"unchanged"`
	Duplicates int           `json:"duplicates"`
	DurationMS int64         `json:"duration_ms"`
}

func toStatsResponse(s ledger.Stats) statsResponse {
	return statsResponse{
		SourceKey:  s.SourceKey,
		Status:     s.Status,
		Message:    s.Message,
		Inserted:   s.Inserted,
		Deleted:    s.Deleted,
		Unchanged:  s.Unchanged,
		Duplicates: s.Duplicates,
		DurationMS: s.Duration.Milliseconds(),
	}
}

// writeStats answers 500 when the store failed; the body still carries the
// stats so the caller can show the message.
func writeStats(w http.ResponseWriter, s ledger.Stats) {
	status := http.StatusOK
	if s.Status == ledger.StatusError {
		status = http.StatusInternalServerError
	}

	respond.JSON(w, status, toStatsResponse(s))
}

func force(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.FormValue("force"))
	return v
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if _, ok := importer.FormatOf(name); !ok {
		http.Error(w, "unsupported file type: "+name, http.StatusBadRequest)
		return
	}

	path, err := h.store(name, file)
	if err != nil {
		respond.Error(w, err)
		return
	}

	stats, err := h.files.SyncFile(r.Context(), path, force(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeStats(w, stats)
}

// store saves an upload under its own name, replacing the previous upload
// of that name atomically.
func (h *Handler) store(name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(h.uploadDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing upload: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}

	path, err := filepath.Abs(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}

	return path, nil
}

func (h *Handler) syncSource(w http.ResponseWriter, r *http.Request) {
	if h.source == "" {
		http.Error(w, "no sync source configured", http.StatusBadRequest)
		return
	}

	stats, err := h.files.SyncFile(r.Context(), h.source, force(r))
	if err != nil {
		respond.Error(w, err)
		return
	}

	writeStats(w, stats)
}

type rowDTO struct {
	Contract      string  `json:"contract"`
	Supplier      string  `json:"supplier"`
	Label         string  `json:"label"`
	ServiceDate   string  `json:"service_date"`
	InvoiceNumber string  `json:"invoice_number"`
	InitialAmount float64 `json:"initial_amount"`
	ServiceAmount float64 `json:"service_amount"`
	TTCAmount     float64 `json:"ttc_amount"`
	Mandate       string  `json:"mandate"`
	Tranche       string  `json:"tranche"`
	PurchaseOrder string  `json:"purchase_order"`
}

type syncRowsRequest struct {
	Key  string   `json:"key"`
	Rows []rowDTO `json:"rows"`
}

// syncRows replaces the cache with rows pushed by another system. There is
// no file to fingerprint, so the sync is always forced.
func (h *Handler) syncRows(w http.ResponseWriter, r *http.Request) {
	var req syncRowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Key == "" {
		req.Key = defaultRowsKey
	}

	rows := make([]ledger.Row, 0, len(req.Rows))
	for _, d := range req.Rows {
		rows = append(rows, ledger.Row(d))
	}

	writeStats(w, h.cache.Sync(r.Context(), req.Key, rows, ledger.SyncOptions{Force: true}))
}

type snapshotResponse struct {
	ID          string        `json:"id"`
	SourceKey   string        `json:"source_key"`
	Size        int64         `json:"size"`
	ContentHash string        `json:"content_hash"`
	ModTime     *time.Time    `json:"mod_time,omitempty"`
	RowCount    int           `json:"row_count"`
	Inserted    int           `json:"inserted"`
	Deleted     int           `json:"deleted"`
	Unchanged   int           `json:"unchanged"`
	Status      ledger.Status `json:"status"`
	Message     string        `json:"message"`
	SyncedAt    time.Time     `json:"synced_at"`
}

func toSnapshotResponse(s *ledger.Snapshot) snapshotResponse {
	return snapshotResponse{
		ID:          s.ID.String(),
		SourceKey:   s.SourceKey,
		Size:        s.Size,
		ContentHash: s.ContentHash,
		ModTime:     s.ModTime,
		RowCount:    s.RowCount,
		Inserted:    s.Inserted,
		Deleted:     s.Deleted,
		Unchanged:   s.Unchanged,
		Status:      s.Status,
		Message:     s.Message,
		SyncedAt:    s.SyncedAt,
	}
}

// sourceKey defaults to the configured source.
func (h *Handler) sourceKey(r *http.Request) string {
	if key := r.URL.Query().Get("key"); key != "" {
		return key
	}

	return h.source
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	key := h.sourceKey(r)
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}

	snap, err := h.cache.LatestSnapshot(r.Context(), key)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSnapshotResponse(snap))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	key := h.sourceKey(r)
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}

	limit := defaultHistoryN

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		limit = n
	}

	snaps, err := h.cache.History(r.Context(), key, limit)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]snapshotResponse, len(snaps))
	for i, s := range snaps {
		resp[i] = toSnapshotResponse(s)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Clear(r.Context()); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
