package view_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/marches/internal/analysis"
	"github.com/MrJamesThe3rd/marches/internal/http/view"
)

type fakeViews struct {
	code     string
	exercise string
	filter   analysis.HistoryFilter
	err      error
}

func (f *fakeViews) Contracts(context.Context) ([]analysis.ContractView, error) {
	return []analysis.ContractView{{Contract: "2024_17_1", Totals: analysis.Totals{InitialAmount: 1000}}}, f.err
}

func (f *fakeViews) ContractTranches(_ context.Context, code string) ([]analysis.TrancheView, error) {
	f.code = code
	return nil, f.err
}

func (f *fakeViews) Tranches(context.Context) ([]analysis.TrancheView, error) {
	return []analysis.TrancheView{{Contract: "2024_17_1", Tranche: "TF"}}, f.err
}

func (f *fakeViews) Operations(context.Context) ([]analysis.OperationView, error) {
	return []analysis.OperationView{{Operation: "2024_17", Lots: 2}}, f.err
}

func (f *fakeViews) OperationSummary(_ context.Context, op, exercise string) (*analysis.OperationSummary, error) {
	f.code, f.exercise = op, exercise
	return &analysis.OperationSummary{Operation: op, Exercise: exercise}, f.err
}

func (f *fakeViews) Exercises(_ context.Context, op string) ([]string, error) {
	f.code = op
	return []string{"2024"}, f.err
}

func (f *fakeViews) History(_ context.Context, filter analysis.HistoryFilter) ([]analysis.HistoryEntry, error) {
	f.filter = filter
	return []analysis.HistoryEntry{{Contract: "2024_17_1", Status: analysis.StatusPaid}}, f.err
}

func serve(h *view.Handler, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestHandler_Views(t *testing.T) {
	tests := []struct {
		target   string
		contains string
	}{
		{target: "/contracts", contains: `"initial_amount":1000`},
		{target: "/tranches", contains: `"tranche":"TF"`},
		{target: "/operations", contains: `"lots":2`},
		{target: "/operations/2024_17/summary", contains: `"operation":"2024_17"`},
		{target: "/operations/2024_17/exercises", contains: `["2024"]`},
		{target: "/history", contains: `"status":"Paid"`},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(view.NewHandler(&fakeViews{}), tt.target)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestHandler_ContractTranchesEmpty(t *testing.T) {
	views := &fakeViews{}
	rec := serve(view.NewHandler(views), "/contracts/2025_12/tranches")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "2025_12", views.code)
}

func TestHandler_OperationSummaryExercise(t *testing.T) {
	views := &fakeViews{}
	rec := serve(view.NewHandler(views), "/operations/2024_17/summary?exercise=2025")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024_17", views.code)
	assert.Equal(t, "2025", views.exercise)
	assert.Contains(t, rec.Body.String(), `"exercise":"2025"`)
}

func TestHandler_HistoryFilter(t *testing.T) {
	views := &fakeViews{}
	rec := serve(view.NewHandler(views), "/history?contract=2024_17_1&from=2024-01-01&to=2024-06-30")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024_17_1", views.filter.Contract)
	require.NotNil(t, views.filter.From)
	require.NotNil(t, views.filter.To)
	assert.True(t, views.filter.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, views.filter.To.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))

	rec = serve(view.NewHandler(views), "/history?from=01/01/2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Error(t *testing.T) {
	rec := serve(view.NewHandler(&fakeViews{err: errors.New("disk")}), "/contracts")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
