// Package report exports the financial views as spreadsheet workbooks.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/marches/internal/analysis"
	"github.com/MrJamesThe3rd/marches/internal/contract"
)

// Sheet names of the full workbook, in order.
const (
	SheetOperations = "Operations"
	SheetContracts  = "Contracts"
	SheetTranches   = "Tranches"
	SheetAmendments = "Amendments"
	SheetHistory    = "History"
	SheetSummary    = "Summary"
)

type Views interface {
	Operations(ctx context.Context) ([]analysis.OperationView, error)
	Contracts(ctx context.Context) ([]analysis.ContractView, error)
	Tranches(ctx context.Context) ([]analysis.TrancheView, error)
	History(ctx context.Context, filter analysis.HistoryFilter) ([]analysis.HistoryEntry, error)
	OperationSummary(ctx context.Context, op, exercise string) (*analysis.OperationSummary, error)
}

type Amendments interface {
	ListContracts(ctx context.Context) ([]*contract.Contract, error)
	ListAmendments(ctx context.Context, code string) ([]*contract.Amendment, error)
}

type Service struct {
	views      Views
	amendments Amendments
}

// NewService returns a report service. amendments may be nil, in which
// case the Amendments sheet is left empty.
func NewService(views Views, amendments Amendments) *Service {
	return &Service{views: views, amendments: amendments}
}

// Workbook builds the full export. The caller closes the file.
func (s *Service) Workbook(ctx context.Context) (*excelize.File, error) {
	ops, err := s.views.Operations(ctx)
	if err != nil {
		return nil, fmt.Errorf("operations: %w", err)
	}

	contracts, err := s.views.Contracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("contracts: %w", err)
	}

	tranches, err := s.views.Tranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("tranches: %w", err)
	}

	history, err := s.views.History(ctx, analysis.HistoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	amendments, err := s.listAmendments(ctx)
	if err != nil {
		return nil, err
	}

	return build(
		operationsTable(ops),
		contractsTable(contracts),
		tranchesTable(tranches),
		amendmentsTable(amendments),
		historyTable(history),
	)
}

// OperationWorkbook builds the summary of one operation, restricted to
// one exercise when exercise is not empty.
func (s *Service) OperationWorkbook(ctx context.Context, op, exercise string) (*excelize.File, error) {
	summary, err := s.views.OperationSummary(ctx, op, exercise)
	if err != nil {
		return nil, fmt.Errorf("operation summary: %w", err)
	}

	return build(summaryTable(summary))
}

func (s *Service) Write(ctx context.Context, w io.Writer) error {
	f, err := s.Workbook(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

func (s *Service) WriteOperation(ctx context.Context, op, exercise string, w io.Writer) error {
	f, err := s.OperationWorkbook(ctx, op, exercise)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// SaveAs writes the full export to path.
func (s *Service) SaveAs(ctx context.Context, path string) error {
	f, err := s.Workbook(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	return nil
}

func (s *Service) listAmendments(ctx context.Context) ([]*contract.Amendment, error) {
	if s.amendments == nil {
		return nil, nil
	}

	contracts, err := s.amendments.ListContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}

	var out []*contract.Amendment

	for _, c := range contracts {
		list, err := s.amendments.ListAmendments(ctx, c.Code)
		if err != nil {
			return nil, fmt.Errorf("listing amendments of %s: %w", c.Code, err)
		}

		out = append(out, list...)
	}

	return out, nil
}

var totalsColumns = []column{
	{title: "Initial amount", kind: money},
	{title: "Service fait", kind: money},
	{title: "Paid", kind: money},
	{title: "Remaining to execute", kind: money, width: 20},
	{title: "Remaining to pay", kind: money, width: 18},
	{title: "Consumption %", kind: pct},
}

func totals(t analysis.Totals) []any {
	return []any{t.InitialAmount, t.ServiceFait, t.Paid, t.RemainingToExecute, t.RemainingToPay, t.ConsumptionPct}
}

func operationsTable(ops []analysis.OperationView) table {
	t := table{
		name: SheetOperations,
		columns: append([]column{
			{title: "Operation"},
			{title: "Lots", width: 6},
			{title: "Labels", width: 40},
			{title: "Suppliers", width: 30},
			{title: "Amendments", width: 11},
		}, totalsColumns...),
	}

	for _, op := range ops {
		t.rows = append(t.rows, append([]any{op.Operation, op.Lots, op.Labels, op.Suppliers, op.Amendments}, totals(op.Totals)...))
	}

	return t
}

func contractsTable(contracts []analysis.ContractView) table {
	t := table{
		name: SheetContracts,
		columns: append([]column{
			{title: "Contract"},
			{title: "Operation"},
			{title: "Supplier", width: 30},
			{title: "Label", width: 40},
			{title: "Tranches", width: 9},
			{title: "Amendments", width: 11},
			{title: "Computed amount", kind: money, width: 16},
			{title: "Amount source", width: 13},
		}, totalsColumns...),
	}

	for _, c := range contracts {
		t.rows = append(t.rows, append([]any{
			c.Contract, c.Operation, c.Supplier, c.Label, c.Tranches, c.Amendments, c.ComputedAmount, string(c.AmountSource),
		}, totals(c.Totals)...))
	}

	return t
}

func tranchesTable(tranches []analysis.TrancheView) table {
	t := table{
		name: SheetTranches,
		columns: append([]column{
			{title: "Contract"},
			{title: "Operation"},
			{title: "Tranche", width: 9},
			{title: "Supplier", width: 30},
			{title: "Rows", width: 6},
		}, totalsColumns...),
	}

	for _, tr := range tranches {
		t.rows = append(t.rows, append([]any{tr.Contract, tr.Operation, tr.Tranche, tr.Supplier, tr.Rows}, totals(tr.Totals)...))
	}

	return t
}

func amendmentsTable(amendments []*contract.Amendment) table {
	t := table{
		name: SheetAmendments,
		columns: []column{
			{title: "Contract"},
			{title: "Sequence", width: 9},
			{title: "Label", width: 40},
			{title: "Kind", width: 10},
			{title: "Amount", kind: money},
			{title: "Signed amount", kind: money},
			{title: "Date", width: 12},
			{title: "Rationale", width: 40},
		},
	}

	for _, a := range amendments {
		var dated any
		if a.DatedOn != nil {
			dated = a.DatedOn.Format("2006-01-02")
		}

		t.rows = append(t.rows, []any{
			a.ContractCode, a.Sequence, a.Label, string(a.Kind), a.Amount, a.Signed(), dated, a.Rationale,
		})
	}

	return t
}

func historyTable(entries []analysis.HistoryEntry) table {
	t := table{
		name: SheetHistory,
		columns: []column{
			{title: "Contract"},
			{title: "Operation"},
			{title: "Supplier", width: 30},
			{title: "Label", width: 40},
			{title: "Service date", width: 12},
			{title: "Invoice"},
			{title: "Purchase order"},
			{title: "Exercise", width: 9},
			{title: "Tranche", width: 9},
			{title: "Service amount", kind: money, width: 15},
			{title: "TTC amount", kind: money},
			{title: "Mandate"},
			{title: "Status", width: 16},
		},
	}

	for _, e := range entries {
		t.rows = append(t.rows, []any{
			e.Contract, e.Operation, e.Supplier, e.Label, e.ServiceDate, e.InvoiceNumber, e.PurchaseOrder,
			e.Exercise, e.Tranche, e.ServiceAmount, e.TTCAmount, e.Mandate, string(e.Status),
		})
	}

	return t
}

func summaryTable(s *analysis.OperationSummary) table {
	t := table{
		name: SheetSummary,
		columns: []column{
			{title: "Contract"},
			{title: "Supplier", width: 30},
			{title: "Label", width: 40},
			{title: "Tranche", width: 9},
			{title: "Initial amount", kind: money},
			{title: "Paid", kind: money},
			{title: "Remaining", kind: money},
		},
	}

	line := func(l analysis.SummaryLine) []any {
		return []any{l.Contract, l.Supplier, l.Label, l.Tranche, l.InitialAmount, l.Paid, l.Remaining}
	}

	for _, l := range s.Lines {
		t.rows = append(t.rows, line(l))
	}

	t.rows = append(t.rows, line(s.Total))

	return t
}
