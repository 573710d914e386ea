package report_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/marches/internal/http/report"
)

type fakeExporter struct {
	op       string
	exercise string
	err      error
}

func (f *fakeExporter) Write(_ context.Context, w io.Writer) error {
	if f.err != nil {
		return f.err
	}

	_, err := w.Write([]byte("PK workbook"))

	return err
}

func (f *fakeExporter) WriteOperation(_ context.Context, op, exercise string, w io.Writer) error {
	f.op, f.exercise = op, exercise
	_, err := w.Write([]byte("PK summary"))

	return err
}

func serve(e *fakeExporter, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	report.NewHandler(e).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestHandler_Export(t *testing.T) {
	rec := serve(&fakeExporter{}, "/export")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="marches_`)
	assert.Equal(t, "PK workbook", rec.Body.String())
}

func TestHandler_ExportOperation(t *testing.T) {
	e := &fakeExporter{}
	rec := serve(e, "/operations/2024_17/export")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024_17", e.op)
	assert.Empty(t, e.exercise)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "operation_2024_17_")
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
}

func TestHandler_ExportOperationExercise(t *testing.T) {
	e := &fakeExporter{}
	rec := serve(e, "/operations/2024_17/export?exercise=2025")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024_17", e.op)
	assert.Equal(t, "2025", e.exercise)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "operation_2024_17_2025_")
}

func TestHandler_ExportError(t *testing.T) {
	rec := serve(&fakeExporter{err: errors.New("disk")}, "/export")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
