package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	amountFormat  = "#,##0.00"
	percentFormat = "0.0"
)

type kind int

const (
	text kind = iota
	money
	pct
)

type column struct {
	title string
	kind  kind
	width float64
}

// table is one sheet: a styled header row, then the data rows.
type table struct {
	name    string
	columns []column
	rows    [][]any
}

type styles struct {
	header, money, pct int
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		s   styles
		err error
	)

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}

	s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: new(amountFormat)})
	if err != nil {
		return s, fmt.Errorf("amount style: %w", err)
	}

	s.pct, err = f.NewStyle(&excelize.Style{CustomNumFmt: new(percentFormat)})
	if err != nil {
		return s, fmt.Errorf("percent style: %w", err)
	}

	return s, nil
}

func (t table) write(f *excelize.File, st styles) error {
	if _, err := f.NewSheet(t.name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", t.name, err)
	}

	header := make([]any, len(t.columns))

	for i, c := range t.columns {
		header[i] = c.title

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		width := c.width
		if width == 0 {
			width = 14
		}

		if err := f.SetColWidth(t.name, col, col, width); err != nil {
			return err
		}

		style := 0

		switch c.kind {
		case money:
			style = st.money
		case pct:
			style = st.pct
		}

		if style != 0 {
			if err := f.SetColStyle(t.name, col, style); err != nil {
				return err
			}
		}
	}

	if err := f.SetSheetRow(t.name, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", t.name, err)
	}

	last, err := excelize.CoordinatesToCellName(len(t.columns), 1)
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(t.name, "A1", last, st.header); err != nil {
		return err
	}

	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(t.name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", t.name, i+2, err)
		}
	}

	if err := f.SetPanes(t.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing %s header: %w", t.name, err)
	}

	if len(t.rows) > 0 {
		if err := f.AutoFilter(t.name, "A1:"+last, nil); err != nil {
			return fmt.Errorf("filtering %s: %w", t.name, err)
		}
	}

	return nil
}

// build writes tables into a new workbook, dropping the default sheet.
func build(tables ...table) (*excelize.File, error) {
	f := excelize.NewFile()

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	for _, t := range tables {
		if err := t.write(f, st); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)

	return f, nil
}
