package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MrJamesThe3rd/marches/internal/ledger"
	"github.com/MrJamesThe3rd/marches/internal/operation"
)

// LabelSeparator joins the distinct labels and suppliers of an operation.
const LabelSeparator = " | "

type AmountSource string

const (
	SourceRows     AmountSource = "rows"
	SourceOverride AmountSource = "override"
)

// Totals are the amounts shared by every view.
type Totals struct {
	InitialAmount      float64 `json:"initial_amount"`
	ServiceFait        float64 `json:"service_fait"`
	Paid               float64 `json:"paid"`
	RemainingToExecute float64 `json:"remaining_to_execute"`
	RemainingToPay     float64 `json:"remaining_to_pay"`
	ConsumptionPct     float64 `json:"consumption_pct"`
}

func newTotals(initial, sf, paid float64) Totals {
	return Totals{
		InitialAmount:      initial,
		ServiceFait:        sf,
		Paid:               paid,
		RemainingToExecute: initial - sf,
		RemainingToPay:     sf - paid,
		ConsumptionPct:     percent(sf, initial),
	}
}

type TrancheView struct {
	Contract  string `json:"contract"`
	Operation string `json:"operation"`
	Tranche   string `json:"tranche"`
	Supplier  string `json:"supplier"`
	Rows      int    `json:"rows"`
	Totals
}

// ContractView is the position of one contract. ComputedAmount is the
// initial amount read from the rows alone, whatever the overrides say.
type ContractView struct {
	Contract       string       `json:"contract"`
	Operation      string       `json:"operation"`
	Supplier       string       `json:"supplier"`
	Label          string       `json:"label"`
	Tranches       int          `json:"tranches"`
	Amendments     int          `json:"amendments"`
	ComputedAmount float64      `json:"computed_amount"`
	AmountSource   AmountSource `json:"amount_source"`
	Rows           int          `json:"rows"`
	Totals
}

type OperationView struct {
	Operation  string   `json:"operation"`
	Contracts  []string `json:"contracts"`
	Lots       int      `json:"lots"`
	Labels     string   `json:"labels"`
	Suppliers  string   `json:"suppliers"`
	Amendments int      `json:"amendments"`
	Totals
}

// group is the rows of one contract, or of one tranche of a contract, in
// load order.
type group struct {
	contract string
	tranche  string
	rows     []ledger.Row
}

func groupByContract(rows []ledger.Row) []*group {
	index := make(map[string]*group)

	var out []*group

	for _, r := range rows {
		g, ok := index[r.Contract]
		if !ok {
			g = &group{contract: r.Contract}
			index[r.Contract] = g
			out = append(out, g)
		}

		g.rows = append(g.rows, r)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].contract < out[j].contract })

	return out
}

func groupByTranche(rows []ledger.Row) []*group {
	type key struct{ contract, tranche string }

	index := make(map[key]*group)

	var out []*group

	for _, r := range rows {
		k := key{r.Contract, trancheKey(r.Tranche)}

		g, ok := index[k]
		if !ok {
			g = &group{contract: k.contract, tranche: k.tranche}
			index[k] = g
			out = append(out, g)
		}

		g.rows = append(g.rows, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].contract != out[j].contract {
			return out[i].contract < out[j].contract
		}

		return trancheLess(out[i].tranche, out[j].tranche)
	})

	return out
}

// Tranches returns one view per (contract, tranche) pair, sorted by
// contract then tranche with the firm tranche first.
func (a *Analyzer) Tranches(ctx context.Context) ([]TrancheView, error) {
	rows, err := a.load(ctx, ledger.ListFilter{})
	if err != nil {
		return nil, err
	}

	return a.trancheViews(newCalc(ctx, a.overrides), rows)
}

// ContractTranches returns the tranche views of a single contract.
func (a *Analyzer) ContractTranches(ctx context.Context, code string) ([]TrancheView, error) {
	c, rows, err := a.prepare(ctx, code)
	if err != nil {
		return nil, err
	}

	return a.trancheViews(c, rows)
}

func (a *Analyzer) trancheViews(c *calc, rows []ledger.Row) ([]TrancheView, error) {
	groups := groupByTranche(rows)
	out := make([]TrancheView, 0, len(groups))

	for _, g := range groups {
		initial, err := c.initialAmount(g.contract, g.tranche, g.rows)
		if err != nil {
			return nil, err
		}

		out = append(out, TrancheView{
			Contract:  g.contract,
			Operation: operation.Of(g.contract),
			Tranche:   g.tranche,
			Supplier:  firstNonEmpty(g.rows, func(r ledger.Row) string { return r.Supplier }),
			Rows:      len(g.rows),
			Totals:    newTotals(initial, serviceFait(g.rows), paid(g.rows)),
		})
	}

	return out, nil
}

// Contracts returns one view per contract, sorted by contract code.
func (a *Analyzer) Contracts(ctx context.Context) ([]ContractView, error) {
	rows, err := a.load(ctx, ledger.ListFilter{})
	if err != nil {
		return nil, err
	}

	return a.contractViews(newCalc(ctx, a.overrides), rows)
}

func (a *Analyzer) contractViews(c *calc, rows []ledger.Row) ([]ContractView, error) {
	groups := groupByContract(rows)
	out := make([]ContractView, 0, len(groups))

	for _, g := range groups {
		v, err := a.contractView(c, g)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

func (a *Analyzer) contractView(c *calc, g *group) (ContractView, error) {
	keys := distinctTranches(g.rows)

	var computed, initial float64

	for _, k := range keys {
		rows := rowsOfTranche(g.rows, k)

		v, err := c.initialAmount(g.contract, k, rows)
		if err != nil {
			return ContractView{}, err
		}

		initial += v
		computed += distinctInitialAmount(rows)
	}

	source := SourceRows

	var amendments int

	ct, err := c.contract(g.contract)
	if err != nil {
		return ContractView{}, err
	}

	if ct != nil {
		list, err := a.overrides.ListAmendments(c.ctx, g.contract)
		if err != nil {
			return ContractView{}, fmt.Errorf("listing amendments of %s: %w", g.contract, err)
		}

		amendments = len(list)

		if ct.BaseAmount > 0 {
			total, err := a.overrides.TotalAmount(c.ctx, g.contract)
			if err != nil {
				return ContractView{}, fmt.Errorf("resolving total of %s: %w", g.contract, err)
			}

			// A total cancelled out by decreases falls back to the rows.
			if total > 0 {
				initial, source = total, SourceOverride
			} else {
				initial = computed
			}
		}
	}

	return ContractView{
		Contract:       g.contract,
		Operation:      operation.Of(g.contract),
		Supplier:       firstNonEmpty(g.rows, func(r ledger.Row) string { return r.Supplier }),
		Label:          firstNonEmpty(g.rows, func(r ledger.Row) string { return r.Label }),
		Tranches:       len(keys),
		Amendments:     amendments,
		ComputedAmount: computed,
		AmountSource:   source,
		Rows:           len(g.rows),
		Totals:         newTotals(initial, serviceFait(g.rows), paid(g.rows)),
	}, nil
}

// Operations regroups the contract views by operation code.
func (a *Analyzer) Operations(ctx context.Context) ([]OperationView, error) {
	contracts, err := a.Contracts(ctx)
	if err != nil {
		return nil, err
	}

	return rollup(contracts), nil
}

func rollup(contracts []ContractView) []OperationView {
	index := make(map[string]int)
	labels := make(map[string][]string)
	suppliers := make(map[string][]string)

	var out []OperationView

	for _, c := range contracts {
		i, ok := index[c.Operation]
		if !ok {
			i = len(out)
			index[c.Operation] = i
			out = append(out, OperationView{Operation: c.Operation})
		}

		op := &out[i]
		op.Contracts = append(op.Contracts, c.Contract)
		op.Amendments += c.Amendments
		op.InitialAmount += c.InitialAmount
		op.ServiceFait += c.ServiceFait
		op.Paid += c.Paid
		labels[c.Operation] = appendDistinct(labels[c.Operation], c.Label)
		suppliers[c.Operation] = appendDistinct(suppliers[c.Operation], c.Supplier)
	}

	for i := range out {
		op := &out[i]
		op.Lots = len(op.Contracts)
		op.Labels = strings.Join(labels[op.Operation], LabelSeparator)
		op.Suppliers = strings.Join(suppliers[op.Operation], LabelSeparator)
		op.Totals = newTotals(op.InitialAmount, op.ServiceFait, op.Paid)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })

	return out
}

func distinctTranches(rows []ledger.Row) []string {
	seen := make(map[string]struct{})

	var keys []string

	for _, r := range rows {
		k := trancheKey(r.Tranche)
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	sortTranches(keys)

	return keys
}

func firstNonEmpty(rows []ledger.Row, field func(ledger.Row) string) string {
	for _, r := range rows {
		if v := strings.TrimSpace(field(r)); v != "" {
			return v
		}
	}

	return ""
}

func appendDistinct(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}

	for _, s := range list {
		if s == v {
			return list
		}
	}

	return append(list, v)
}
