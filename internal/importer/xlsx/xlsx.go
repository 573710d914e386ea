// Package xlsx reads contract follow-up workbooks.
package xlsx

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/marches/internal/importer/layout"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

var ErrNoSheet = errors.New("workbook has no sheet")

type Parser struct {
	cols  layout.Columns
	sheet string
}

type Option func(*Parser)

// WithSheet reads the named sheet instead of the first one.
func WithSheet(name string) Option {
	return func(p *Parser) { p.sheet = name }
}

func New(l layout.Layout, opts ...Option) (*Parser, error) {
	cols, err := l.Columns()
	if err != nil {
		return nil, fmt.Errorf("resolving layout: %w", err)
	}

	p := &Parser{cols: cols}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Parse returns the contract lines of the workbook. Cells are read as
// stored, so dates arrive as serial numbers and amounts unformatted.
func (p *Parser) Parse(r io.Reader) ([]ledger.Row, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheet
		}

		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var rows []ledger.Row

	for i, cells := range records {
		if i < p.cols.HeaderRows() {
			continue
		}

		if row, ok := p.cols.Row(cells); ok {
			rows = append(rows, row)
		}
	}

	return rows, nil
}
