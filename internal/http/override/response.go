package override

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marches/internal/contract"
)

type contractResponse struct {
	Code       string        `json:"code"`
	Label      string        `json:"label"`
	Supplier   string        `json:"supplier"`
	Kind       contract.Kind `json:"kind"`
	BaseAmount float64       `json:"base_amount"`
	NotifiedOn *time.Time    `json:"notified_on,omitempty"`
	StartsOn   *time.Time    `json:"starts_on,omitempty"`
	EndsOn     *time.Time    `json:"ends_on,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type amendmentResponse struct {
	ID           uuid.UUID                 `json:"id"`
	ContractCode string                    `json:"contract_code"`
	Sequence     int                       `json:"sequence"`
	Label        string                    `json:"label"`
	Amount       float64                   `json:"amount"`
	Kind         contract.ModificationKind `json:"kind"`
	Signed       float64                   `json:"signed_amount"`
	DatedOn      *time.Time                `json:"dated_on,omitempty"`
	Rationale    string                    `json:"rationale,omitempty"`
}

type trancheResponse struct {
	ID           uuid.UUID `json:"id"`
	ContractCode string    `json:"contract_code"`
	Code         string    `json:"code"`
	Label        string    `json:"label"`
	Amount       float64   `json:"amount"`
	Position     int       `json:"position"`
}

type contractDetailResponse struct {
	contractResponse
	TotalAmount float64             `json:"total_amount"`
	Amendments  []amendmentResponse `json:"amendments"`
	Tranches    []trancheResponse   `json:"tranches"`
}

func toContractResponse(c *contract.Contract) contractResponse {
	return contractResponse{
		Code:       c.Code,
		Label:      c.Label,
		Supplier:   c.Supplier,
		Kind:       c.Kind,
		BaseAmount: c.BaseAmount,
		NotifiedOn: c.NotifiedOn,
		StartsOn:   c.StartsOn,
		EndsOn:     c.EndsOn,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toAmendmentResponse(a *contract.Amendment) amendmentResponse {
	return amendmentResponse{
		ID:           a.ID,
		ContractCode: a.ContractCode,
		Sequence:     a.Sequence,
		Label:        a.Label,
		Amount:       a.Amount,
		Kind:         a.Kind,
		Signed:       a.Signed(),
		DatedOn:      a.DatedOn,
		Rationale:    a.Rationale,
	}
}

func toTrancheResponse(t *contract.Tranche) trancheResponse {
	return trancheResponse{
		ID:           t.ID,
		ContractCode: t.ContractCode,
		Code:         t.Code,
		Label:        t.Label,
		Amount:       t.Amount,
		Position:     t.Position,
	}
}
