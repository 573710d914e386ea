// Package analysis derives the financial views of contracts from the cached
// invoice rows, corrected by manually entered contract data.
//
// Every call reads the rows and the overrides afresh; nothing is cached
// between calls, so edits made elsewhere show up on the next call.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/marches/internal/amount"
	"github.com/MrJamesThe3rd/marches/internal/contract"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

// serviceEpsilon is the smallest service-fait amount that counts as service
// rendered; smaller values are rounding noise.
const serviceEpsilon = 0.01

type RowSource interface {
	Load(ctx context.Context, filter ledger.ListFilter) ([]ledger.Row, error)
}

// Overrides is the read side of the contract store.
type Overrides interface {
	GetContract(ctx context.Context, code string) (*contract.Contract, error)
	ListAmendments(ctx context.Context, code string) ([]*contract.Amendment, error)
	ListTranches(ctx context.Context, code string) ([]*contract.Tranche, error)
	TotalAmount(ctx context.Context, code string) (float64, error)
}

type Analyzer struct {
	rows      RowSource
	overrides Overrides
}

// New returns an Analyzer. overrides may be nil, in which case amounts come
// from the rows only.
func New(rows RowSource, overrides Overrides) *Analyzer {
	return &Analyzer{rows: rows, overrides: overrides}
}

// TrancheInitialAmount is the committed amount of one tranche of a contract.
// A manual base amount wins for the firm tranche, then an entered tranche
// amount, then the distinct positive initial amounts of the rows.
func (a *Analyzer) TrancheInitialAmount(ctx context.Context, contractCode, tranche string) (float64, error) {
	c, rows, err := a.prepare(ctx, contractCode)
	if err != nil {
		return 0, err
	}

	key := trancheKey(tranche)

	return c.initialAmount(strings.TrimSpace(contractCode), key, rowsOfTranche(rows, key))
}

// TrancheServiceFait sums the service-fait amounts of one tranche.
func (a *Analyzer) TrancheServiceFait(ctx context.Context, contractCode, tranche string) (float64, error) {
	_, rows, err := a.prepare(ctx, contractCode)
	if err != nil {
		return 0, err
	}

	return serviceFait(rowsOfTranche(rows, trancheKey(tranche))), nil
}

// TranchePaid sums the TTC amounts of the rows of one tranche that carry a
// mandate reference.
func (a *Analyzer) TranchePaid(ctx context.Context, contractCode, tranche string) (float64, error) {
	_, rows, err := a.prepare(ctx, contractCode)
	if err != nil {
		return 0, err
	}

	return paid(rowsOfTranche(rows, trancheKey(tranche))), nil
}

func (a *Analyzer) prepare(ctx context.Context, contractCode string) (*calc, []ledger.Row, error) {
	code := strings.TrimSpace(contractCode)
	if code == "" {
		return newCalc(ctx, a.overrides), nil, nil
	}

	rows, err := a.load(ctx, ledger.ListFilter{Contract: code})
	if err != nil {
		return nil, nil, err
	}

	return newCalc(ctx, a.overrides), rows, nil
}

// load returns the rows with a contract code, contract codes trimmed.
func (a *Analyzer) load(ctx context.Context, filter ledger.ListFilter) ([]ledger.Row, error) {
	rows, err := a.rows.Load(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading rows: %w", err)
	}

	out := rows[:0:0]

	for _, r := range rows {
		r.Contract = strings.TrimSpace(r.Contract)
		if r.Contract == "" {
			continue
		}

		out = append(out, r)
	}

	return out, nil
}

// calc memoises override lookups for the duration of one call.
type calc struct {
	ctx       context.Context
	overrides Overrides
	contracts map[string]*contract.Contract
	tranches  map[string]map[string]float64
}

func newCalc(ctx context.Context, overrides Overrides) *calc {
	return &calc{
		ctx:       ctx,
		overrides: overrides,
		contracts: make(map[string]*contract.Contract),
		tranches:  make(map[string]map[string]float64),
	}
}

// contract returns nil for contracts without override data.
func (c *calc) contract(code string) (*contract.Contract, error) {
	if c.overrides == nil {
		return nil, nil
	}

	if got, ok := c.contracts[code]; ok {
		return got, nil
	}

	got, err := c.overrides.GetContract(c.ctx, code)
	if errors.Is(err, contract.ErrNotFound) {
		got, err = nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading contract %s: %w", code, err)
	}

	c.contracts[code] = got

	return got, nil
}

// trancheAmounts maps tranche codes to their entered amounts.
func (c *calc) trancheAmounts(code string) (map[string]float64, error) {
	if c.overrides == nil {
		return nil, nil
	}

	if got, ok := c.tranches[code]; ok {
		return got, nil
	}

	list, err := c.overrides.ListTranches(c.ctx, code)
	if err != nil && !errors.Is(err, contract.ErrNotFound) {
		return nil, fmt.Errorf("reading tranches of %s: %w", code, err)
	}

	amounts := make(map[string]float64, len(list))
	for _, t := range list {
		amounts[strings.ToUpper(t.Code)] = t.Amount
	}

	c.tranches[code] = amounts

	return amounts, nil
}

func (c *calc) initialAmount(code, key string, rows []ledger.Row) (float64, error) {
	ct, err := c.contract(code)
	if err != nil {
		return 0, err
	}

	if ct != nil && ct.BaseAmount > 0 && key == firmTranche {
		return ct.BaseAmount, nil
	}

	entered, err := c.trancheAmounts(code)
	if err != nil {
		return 0, err
	}

	if v, ok := entered[strings.ToUpper(key)]; ok && v > 0 {
		return v, nil
	}

	return distinctInitialAmount(rows), nil
}

// distinctInitialAmount sums the distinct positive initial amounts. The
// same contract line is repeated on every invoice row and counts once.
func distinctInitialAmount(rows []ledger.Row) float64 {
	seen := make(map[int64]struct{})

	var total float64

	for _, r := range rows {
		if r.InitialAmount <= 0 {
			continue
		}

		k := amount.Cents(r.InitialAmount)
		if _, dup := seen[k]; dup {
			continue
		}

		seen[k] = struct{}{}
		total += r.InitialAmount
	}

	return total
}

func serviceFait(rows []ledger.Row) float64 {
	var total float64
	for _, r := range rows {
		total += r.ServiceAmount
	}

	return total
}

func paid(rows []ledger.Row) float64 {
	var total float64

	for _, r := range rows {
		if hasMandate(r) {
			total += r.TTCAmount
		}
	}

	return total
}

func hasMandate(r ledger.Row) bool {
	return strings.TrimSpace(r.Mandate) != ""
}

func rowsOfTranche(rows []ledger.Row, key string) []ledger.Row {
	var out []ledger.Row

	for _, r := range rows {
		if trancheKey(r.Tranche) == key {
			out = append(out, r)
		}
	}

	return out
}

func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}

	return 100 * part / whole
}
