// Package override serves editing of the manually entered contract data.
package override

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marches/internal/contract"
	"github.com/MrJamesThe3rd/marches/internal/http/respond"
)

type Overrides interface {
	ListContracts(ctx context.Context) ([]*contract.Contract, error)
	GetContract(ctx context.Context, code string) (*contract.Contract, error)
	SaveContract(ctx context.Context, c *contract.Contract) error
	TotalAmount(ctx context.Context, code string) (float64, error)

	ListAmendments(ctx context.Context, code string) ([]*contract.Amendment, error)
	AddAmendment(ctx context.Context, a *contract.Amendment) error
	UpdateAmendment(ctx context.Context, a *contract.Amendment) error
	DeleteAmendment(ctx context.Context, id uuid.UUID) error

	ListTranches(ctx context.Context, code string) ([]*contract.Tranche, error)
	AddTranche(ctx context.Context, t *contract.Tranche) error
	UpdateTranche(ctx context.Context, t *contract.Tranche) error
	DeleteTranche(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	svc Overrides
}

func NewHandler(svc Overrides) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/contracts", h.listContracts)
	r.Get("/contracts/{code}", h.getContract)
	r.Put("/contracts/{code}", h.saveContract)
	r.Post("/contracts/{code}/amendments", h.addAmendment)
	r.Put("/amendments/{id}", h.updateAmendment)
	r.Delete("/amendments/{id}", h.deleteAmendment)
	r.Post("/contracts/{code}/tranches", h.addTranche)
	r.Put("/tranches/{id}", h.updateTranche)
	r.Delete("/tranches/{id}", h.deleteTranche)
}

func (h *Handler) listContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.svc.ListContracts(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]contractResponse, len(contracts))
	for i, c := range contracts {
		resp[i] = toContractResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	c, err := h.svc.GetContract(ctx, code)
	if err != nil {
		respond.Error(w, err)
		return
	}

	amendments, err := h.svc.ListAmendments(ctx, code)
	if err != nil {
		respond.Error(w, err)
		return
	}

	tranches, err := h.svc.ListTranches(ctx, code)
	if err != nil {
		respond.Error(w, err)
		return
	}

	total, err := h.svc.TotalAmount(ctx, code)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := contractDetailResponse{
		contractResponse: toContractResponse(c),
		TotalAmount:      total,
		Amendments:       make([]amendmentResponse, len(amendments)),
		Tranches:         make([]trancheResponse, len(tranches)),
	}

	for i, a := range amendments {
		resp.Amendments[i] = toAmendmentResponse(a)
	}

	for i, t := range tranches {
		resp.Tranches[i] = toTrancheResponse(t)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type contractRequest struct {
	Label      string        `json:"label"`
	Supplier   string        `json:"supplier"`
	Kind       contract.Kind `json:"kind"`
	BaseAmount float64       `json:"base_amount"`
	NotifiedOn *time.Time    `json:"notified_on"`
	StartsOn   *time.Time    `json:"starts_on"`
	EndsOn     *time.Time    `json:"ends_on"`
	Notes      string        `json:"notes"`
}

func (h *Handler) saveContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c := &contract.Contract{
		Code:       chi.URLParam(r, "code"),
		Label:      req.Label,
		Supplier:   req.Supplier,
		Kind:       req.Kind,
		BaseAmount: req.BaseAmount,
		NotifiedOn: req.NotifiedOn,
		StartsOn:   req.StartsOn,
		EndsOn:     req.EndsOn,
		Notes:      req.Notes,
	}

	if err := h.svc.SaveContract(r.Context(), c); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toContractResponse(c))
}

type amendmentRequest struct {
	Sequence  int                       `json:"sequence"`
	Label     string                    `json:"label"`
	Amount    float64                   `json:"amount"`
	Kind      contract.ModificationKind `json:"kind"`
	DatedOn   *time.Time                `json:"dated_on"`
	Rationale string                    `json:"rationale"`
}

func (req amendmentRequest) amendment() *contract.Amendment {
	return &contract.Amendment{
		Sequence:  req.Sequence,
		Label:     req.Label,
		Amount:    req.Amount,
		Kind:      req.Kind,
		DatedOn:   req.DatedOn,
		Rationale: req.Rationale,
	}
}

func (h *Handler) addAmendment(w http.ResponseWriter, r *http.Request) {
	var req amendmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a := req.amendment()
	a.ContractCode = chi.URLParam(r, "code")

	if err := h.svc.AddAmendment(r.Context(), a); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toAmendmentResponse(a))
}

func (h *Handler) updateAmendment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req amendmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a := req.amendment()
	a.ID = id

	if err := h.svc.UpdateAmendment(r.Context(), a); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toAmendmentResponse(a))
}

func (h *Handler) deleteAmendment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteAmendment(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type trancheRequest struct {
	Code     string  `json:"code"`
	Label    string  `json:"label"`
	Amount   float64 `json:"amount"`
	Position int     `json:"position"`
}

func (req trancheRequest) tranche() *contract.Tranche {
	return &contract.Tranche{
		Code:     req.Code,
		Label:    req.Label,
		Amount:   req.Amount,
		Position: req.Position,
	}
}

func (h *Handler) addTranche(w http.ResponseWriter, r *http.Request) {
	var req trancheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t := req.tranche()
	t.ContractCode = chi.URLParam(r, "code")

	if err := h.svc.AddTranche(r.Context(), t); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toTrancheResponse(t))
}

func (h *Handler) updateTranche(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req trancheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t := req.tranche()
	t.ID = id

	if err := h.svc.UpdateTranche(r.Context(), t); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTrancheResponse(t))
}

func (h *Handler) deleteTranche(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteTranche(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
