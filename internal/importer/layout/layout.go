// Package layout maps the fixed columns of the contract follow-up workbook
// to ledger rows.
package layout

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/marches/internal/amount"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

// Layout gives the column letter of every field.
type Layout struct {
	Contract      string
	Supplier      string
	Label         string
	ServiceDate   string
	InvoiceNumber string
	InitialAmount string
	ServiceAmount string
	TTCAmount     string
	Mandate       string
	Tranche       string
	PurchaseOrder string

	// HeaderRows are skipped before the first record.
	HeaderRows int
}

var Default = Layout{
	Contract:      "AN",
	Supplier:      "I",
	Label:         "N",
	ServiceDate:   "AI",
	InvoiceNumber: "AL",
	InitialAmount: "O",
	ServiceAmount: "AH",
	TTCAmount:     "AD",
	Mandate:       "AT",
	Tranche:       "AO",
	PurchaseOrder: "AM",
	HeaderRows:    1,
}

// Columns is a Layout resolved to zero-based indexes.
type Columns struct {
	contract      int
	supplier      int
	label         int
	serviceDate   int
	invoiceNumber int
	initialAmount int
	serviceAmount int
	ttcAmount     int
	mandate       int
	tranche       int
	purchaseOrder int
	headerRows    int
}

func (l Layout) Columns() (Columns, error) {
	c := Columns{headerRows: max(l.HeaderRows, 0)}

	fields := []struct {
		letter string
		dst    *int
	}{
		{l.Contract, &c.contract},
		{l.Supplier, &c.supplier},
		{l.Label, &c.label},
		{l.ServiceDate, &c.serviceDate},
		{l.InvoiceNumber, &c.invoiceNumber},
		{l.InitialAmount, &c.initialAmount},
		{l.ServiceAmount, &c.serviceAmount},
		{l.TTCAmount, &c.ttcAmount},
		{l.Mandate, &c.mandate},
		{l.Tranche, &c.tranche},
		{l.PurchaseOrder, &c.purchaseOrder},
	}

	for _, f := range fields {
		n, err := excelize.ColumnNameToNumber(strings.TrimSpace(f.letter))
		if err != nil {
			return Columns{}, fmt.Errorf("column %q: %w", f.letter, err)
		}

		*f.dst = n - 1
	}

	return c, nil
}

// HeaderRows is the number of leading records to skip.
func (c Columns) HeaderRows() int {
	return c.headerRows
}

// Row maps one record. Records without a contract code are not contract
// lines and are reported with ok false.
func (c Columns) Row(cells []string) (row ledger.Row, ok bool) {
	cell := func(i int) string {
		if i < 0 || i >= len(cells) {
			return ""
		}

		return strings.TrimSpace(cells[i])
	}

	row = ledger.Row{
		Contract:      cell(c.contract),
		Supplier:      cell(c.supplier),
		Label:         cell(c.label),
		ServiceDate:   Date(cell(c.serviceDate)),
		InvoiceNumber: cell(c.invoiceNumber),
		InitialAmount: amount.Parse(cell(c.initialAmount)),
		ServiceAmount: amount.Parse(cell(c.serviceAmount)),
		TTCAmount:     amount.Parse(cell(c.ttcAmount)),
		Mandate:       cell(c.mandate),
		Tranche:       Tranche(cell(c.tranche)),
		PurchaseOrder: cell(c.purchaseOrder),
	}

	return row, row.Contract != ""
}

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
}

// Date normalises a date cell to yyyy-mm-dd. Excel serial numbers are
// converted; unreadable values are kept as they are.
func Date(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return s
		}

		return t.Format(time.DateOnly)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}

	return s
}

// Tranche canonicalises a tranche marker: numbers read back from a
// spreadsheet as "1.0" become "1".
func Tranche(s string) string {
	s = strings.TrimSpace(s)

	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || f != float64(int64(f)) {
		return s
	}

	return strconv.FormatInt(int64(f), 10)
}
