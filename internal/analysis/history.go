package analysis

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/marches/internal/ledger"
	"github.com/MrJamesThe3rd/marches/internal/operation"
)

type InvoiceStatus string

const (
	StatusPaid            InvoiceStatus = "Paid"
	StatusServiceRendered InvoiceStatus = "Service rendered"
	StatusInvoiced        InvoiceStatus = "Invoiced"
	StatusPending         InvoiceStatus = "Pending"
)

// StatusOf derives the progress of one invoice row: a mandate means paid,
// then a service-fait amount, then an invoice number.
func StatusOf(r ledger.Row) InvoiceStatus {
	switch {
	case hasMandate(r):
		return StatusPaid
	case r.ServiceAmount > serviceEpsilon:
		return StatusServiceRendered
	case strings.TrimSpace(r.InvoiceNumber) != "":
		return StatusInvoiced
	default:
		return StatusPending
	}
}

type HistoryEntry struct {
	Contract      string        `json:"contract"`
	Operation     string        `json:"operation"`
	Supplier      string        `json:"supplier"`
	Label         string        `json:"label"`
	ServiceDate   string        `json:"service_date"`
	InvoiceNumber string        `json:"invoice_number"`
	PurchaseOrder string        `json:"purchase_order"`
	Exercise      string        `json:"exercise"`
	Tranche       string        `json:"tranche"`
	ServiceAmount float64       `json:"service_amount"`
	TTCAmount     float64       `json:"ttc_amount"`
	Mandate       string        `json:"mandate"`
	Status        InvoiceStatus `json:"status"`
}

// HistoryFilter narrows the history. From and To are inclusive; rows
// without a readable date are dropped when either bound is set.
type HistoryFilter struct {
	Contract string
	From     *time.Time
	To       *time.Time
}

func (f HistoryFilter) dated() bool {
	return f.From != nil || f.To != nil
}

func (f HistoryFilter) includes(d time.Time) bool {
	if f.From != nil && d.Before(day(*f.From)) {
		return false
	}

	if f.To != nil && d.After(day(*f.To)) {
		return false
	}

	return true
}

// History returns one entry per row, sorted by contract then most recent
// service date first.
func (a *Analyzer) History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error) {
	rows, err := a.load(ctx, ledger.ListFilter{Contract: strings.TrimSpace(filter.Contract)})
	if err != nil {
		return nil, err
	}

	type dated struct {
		entry HistoryEntry
		date  time.Time
	}

	list := make([]dated, 0, len(rows))

	for _, r := range rows {
		d, ok := ParseDate(r.ServiceDate)
		if filter.dated() && (!ok || !filter.includes(d)) {
			continue
		}

		list = append(list, dated{entry: historyEntry(r), date: d})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].entry.Contract != list[j].entry.Contract {
			return list[i].entry.Contract < list[j].entry.Contract
		}

		return list[i].date.After(list[j].date)
	})

	out := make([]HistoryEntry, len(list))
	for i, d := range list {
		out[i] = d.entry
	}

	return out, nil
}

func historyEntry(r ledger.Row) HistoryEntry {
	return HistoryEntry{
		Contract:      r.Contract,
		Operation:     operation.Of(r.Contract),
		Supplier:      r.Supplier,
		Label:         r.Label,
		ServiceDate:   r.ServiceDate,
		InvoiceNumber: r.InvoiceNumber,
		PurchaseOrder: r.PurchaseOrder,
		Exercise:      operation.Exercise(r.PurchaseOrder),
		Tranche:       trancheKey(r.Tranche),
		ServiceAmount: r.ServiceAmount,
		TTCAmount:     r.TTCAmount,
		Mandate:       r.Mandate,
		Status:        StatusOf(r),
	}
}

// Exercises lists the fiscal years of the purchase orders of an operation,
// sorted, unknown last.
func (a *Analyzer) Exercises(ctx context.Context, op string) ([]string, error) {
	rows, err := a.operationRows(ctx, op)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := []string{}

	for _, r := range rows {
		e := operation.Exercise(r.PurchaseOrder)
		if _, ok := seen[e]; ok {
			continue
		}

		seen[e] = struct{}{}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if (out[i] == operation.UnknownExercise) != (out[j] == operation.UnknownExercise) {
			return out[j] == operation.UnknownExercise
		}

		return out[i] < out[j]
	})

	return out, nil
}

type SummaryLine struct {
	Contract      string  `json:"contract"`
	Supplier      string  `json:"supplier"`
	Label         string  `json:"label"`
	Tranche       string  `json:"tranche"`
	InitialAmount float64 `json:"initial_amount"`
	Paid          float64 `json:"paid"`
	Remaining     float64 `json:"remaining"`
}

type OperationSummary struct {
	Operation string        `json:"operation"`
	Exercise  string        `json:"exercise,omitempty"`
	Lines     []SummaryLine `json:"lines"`
	Total     SummaryLine   `json:"total"`
}

// OperationSummary lists what is committed and paid per tranche of every
// contract of an operation. Remaining is what is left to pay on the
// commitment. A non-empty exercise keeps only the rows whose purchase
// order belongs to that fiscal year.
func (a *Analyzer) OperationSummary(ctx context.Context, op, exercise string) (*OperationSummary, error) {
	rows, err := a.operationRows(ctx, op)
	if err != nil {
		return nil, err
	}

	exercise = strings.TrimSpace(exercise)
	if exercise != "" {
		rows = slices.DeleteFunc(rows, func(r ledger.Row) bool {
			return operation.Exercise(r.PurchaseOrder) != exercise
		})
	}

	c := newCalc(ctx, a.overrides)
	summary := &OperationSummary{
		Operation: strings.TrimSpace(op),
		Exercise:  exercise,
		Lines:     []SummaryLine{},
		Total:     SummaryLine{Label: "Total"},
	}

	for _, g := range groupByTranche(rows) {
		initial, err := c.initialAmount(g.contract, g.tranche, g.rows)
		if err != nil {
			return nil, err
		}

		p := paid(g.rows)

		summary.Lines = append(summary.Lines, SummaryLine{
			Contract:      g.contract,
			Supplier:      firstNonEmpty(g.rows, func(r ledger.Row) string { return r.Supplier }),
			Label:         firstNonEmpty(g.rows, func(r ledger.Row) string { return r.Label }),
			Tranche:       g.tranche,
			InitialAmount: initial,
			Paid:          p,
			Remaining:     initial - p,
		})

		summary.Total.InitialAmount += initial
		summary.Total.Paid += p
	}

	summary.Total.Remaining = summary.Total.InitialAmount - summary.Total.Paid

	return summary, nil
}

func (a *Analyzer) operationRows(ctx context.Context, op string) ([]ledger.Row, error) {
	code := strings.TrimSpace(op)

	rows, err := a.load(ctx, ledger.ListFilter{})
	if err != nil {
		return nil, err
	}

	var out []ledger.Row

	for _, r := range rows {
		if code != "" && operation.Of(r.Contract) == code {
			out = append(out, r)
		}
	}

	return out, nil
}

var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	time.DateTime,
	time.RFC3339,
	"02/01/2006 15:04:05",
}

// ParseDate reads a service-fait date in any of the layouts found in
// exports. The result is truncated to the day, in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), true
		}
	}

	return time.Time{}, false
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
