// Package view serves the financial views computed from the row cache.
package view

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/marches/internal/analysis"
	"github.com/MrJamesThe3rd/marches/internal/http/respond"
)

type Views interface {
	Contracts(ctx context.Context) ([]analysis.ContractView, error)
	ContractTranches(ctx context.Context, code string) ([]analysis.TrancheView, error)
	Tranches(ctx context.Context) ([]analysis.TrancheView, error)
	Operations(ctx context.Context) ([]analysis.OperationView, error)
	OperationSummary(ctx context.Context, op, exercise string) (*analysis.OperationSummary, error)
	Exercises(ctx context.Context, op string) ([]string, error)
	History(ctx context.Context, filter analysis.HistoryFilter) ([]analysis.HistoryEntry, error)
}

type Handler struct {
	views Views
}

func NewHandler(views Views) *Handler {
	return &Handler{views: views}
}

// Routes registers on r directly since the views span several prefixes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/contracts", h.contracts)
	r.Get("/contracts/{code}/tranches", h.contractTranches)
	r.Get("/tranches", h.tranches)
	r.Get("/operations", h.operations)
	r.Get("/operations/{code}/summary", h.operationSummary)
	r.Get("/operations/{code}/exercises", h.exercises)
	r.Get("/history", h.history)
}

// list answers a view as JSON, never as null.
func list[T any](w http.ResponseWriter, items []T, err error) {
	if err != nil {
		respond.Error(w, err)
		return
	}

	if items == nil {
		items = []T{}
	}

	respond.JSON(w, http.StatusOK, items)
}

func (h *Handler) contracts(w http.ResponseWriter, r *http.Request) {
	items, err := h.views.Contracts(r.Context())
	list(w, items, err)
}

func (h *Handler) contractTranches(w http.ResponseWriter, r *http.Request) {
	items, err := h.views.ContractTranches(r.Context(), chi.URLParam(r, "code"))
	list(w, items, err)
}

func (h *Handler) tranches(w http.ResponseWriter, r *http.Request) {
	items, err := h.views.Tranches(r.Context())
	list(w, items, err)
}

func (h *Handler) operations(w http.ResponseWriter, r *http.Request) {
	items, err := h.views.Operations(r.Context())
	list(w, items, err)
}

func (h *Handler) operationSummary(w http.ResponseWriter, r *http.Request) {
	exercise := strings.TrimSpace(r.URL.Query().Get("exercise"))

	summary, err := h.views.OperationSummary(r.Context(), chi.URLParam(r, "code"), exercise)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, summary)
}

func (h *Handler) exercises(w http.ResponseWriter, r *http.Request) {
	items, err := h.views.Exercises(r.Context(), chi.URLParam(r, "code"))
	list(w, items, err)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := analysis.HistoryFilter{Contract: strings.TrimSpace(q.Get("contract"))}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "invalid "+p.name+" date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		*p.dst = new(t)
	}

	items, err := h.views.History(r.Context(), filter)
	list(w, items, err)
}
