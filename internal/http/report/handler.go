// Package report serves workbook downloads.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/marches/internal/http/respond"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Exporter interface {
	Write(ctx context.Context, w io.Writer) error
	WriteOperation(ctx context.Context, op, exercise string, w io.Writer) error
}

type Handler struct {
	svc Exporter
	now func() time.Time
}

func NewHandler(svc Exporter) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/export", h.export)
	// ?exercise=2025 restricts the summary to one fiscal year.
	r.Get("/operations/{code}/export", h.exportOperation)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.Write(r.Context(), &buf); err != nil {
		respond.Error(w, err)
		return
	}

	h.send(w, fmt.Sprintf("marches_%s.xlsx", h.now().Format("20060102")), &buf)
}

func (h *Handler) exportOperation(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	exercise := strings.TrimSpace(r.URL.Query().Get("exercise"))

	var buf bytes.Buffer
	if err := h.svc.WriteOperation(r.Context(), code, exercise, &buf); err != nil {
		respond.Error(w, err)
		return
	}

	name := "operation_" + code
	if exercise != "" {
		name += "_" + exercise
	}

	h.send(w, fmt.Sprintf("%s_%s.xlsx", name, h.now().Format("20060102")), &buf)
}

// send writes a fully built workbook, so that a failed export never
// leaves a truncated download behind.
func (h *Handler) send(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write workbook", "file", filename, "error", err)
	}
}
