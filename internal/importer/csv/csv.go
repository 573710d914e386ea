// Package csv reads delimited exports of the contract follow-up workbook.
// The columns are those of the workbook; the charset and the delimiter
// are detected.
package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/marches/internal/encoding"
	"github.com/MrJamesThe3rd/marches/internal/importer/layout"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

type Parser struct {
	cols layout.Columns
}

func New(l layout.Layout) (*Parser, error) {
	cols, err := l.Columns()
	if err != nil {
		return nil, fmt.Errorf("resolving layout: %w", err)
	}

	return &Parser{cols: cols}, nil
}

func (p *Parser) Parse(r io.Reader) ([]ledger.Row, error) {
	utf8r, _, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	var rows []ledger.Row

	for i, rec := range records {
		if i < p.cols.HeaderRows() {
			continue
		}

		if row, ok := p.cols.Row(rec); ok {
			rows = append(rows, row)
		}
	}

	return rows, nil
}

// sniffDelimiter picks ';' or ',' from the first line. French exports use
// ';' since ',' is the decimal separator.
func sniffDelimiter(br *bufio.Reader) rune {
	buf, _ := br.Peek(4096)
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i]
	}

	if bytes.Count(buf, []byte{','}) > bytes.Count(buf, []byte{';'}) {
		return ','
	}

	return ';'
}
