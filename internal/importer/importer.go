package importer

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf guesses the format of a file from its extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, true
	case ".csv", ".txt":
		return FormatCSV, true
	default:
		return "", false
	}
}

type Parser interface {
	Parse(r io.Reader) ([]ledger.Row, error)
}
