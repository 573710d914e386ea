package csv_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/marches/internal/importer/csv"
	"github.com/MrJamesThe3rd/marches/internal/importer/layout"
)

// compact is a layout over the first eleven columns, in field order.
var compact = layout.Layout{
	Contract:      "A",
	Supplier:      "B",
	Label:         "C",
	ServiceDate:   "D",
	InvoiceNumber: "E",
	InitialAmount: "F",
	ServiceAmount: "G",
	TTCAmount:     "H",
	Mandate:       "I",
	Tranche:       "J",
	PurchaseOrder: "K",
	HeaderRows:    1,
}

const semicolon = `Marché;Fournisseur;Libellé;Date SF;Facture;Montant initial;Montant SF;TTC;Mandat;Tranche;BC
2024_17_1;Société Étude;Études préalables;15/01/2024;F1;10 000,00;1 000,50;1 200,60;M1;;24001
;orphan;;;;;;;;;
2024_17_1;Société Étude;Études préalables;2024-02-01;F2;10 000,00;500;600;;1,0;24002
`

func TestParser_Semicolon(t *testing.T) {
	p, err := csv.New(compact)
	require.NoError(t, err)

	rows, err := p.Parse(strings.NewReader(semicolon))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Société Étude", rows[0].Supplier)
	assert.Equal(t, "2024-01-15", rows[0].ServiceDate)
	assert.InDelta(t, 10000, rows[0].InitialAmount, 1e-9)
	assert.InDelta(t, 1000.5, rows[0].ServiceAmount, 1e-9)
	assert.InDelta(t, 1200.6, rows[0].TTCAmount, 1e-9)
	assert.Equal(t, "M1", rows[0].Mandate)
	assert.Empty(t, rows[0].Tranche)

	assert.Equal(t, "1", rows[1].Tranche)
	assert.Empty(t, rows[1].Mandate)
}

func TestParser_Windows1252(t *testing.T) {
	in, err := charmap.Windows1252.NewEncoder().Bytes([]byte(semicolon))
	require.NoError(t, err)

	p, err := csv.New(compact)
	require.NoError(t, err)

	rows, err := p.Parse(bytes.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Études préalables", rows[0].Label)
}

func TestParser_Comma(t *testing.T) {
	in := "contract,supplier,label,date,invoice,initial,sf,ttc,mandate,tranche,po\n" +
		"2025_12,ACME,Solo,2024-05-02,F9,\"1,500.00\",100,120,M9,2,25001\n"

	p, err := csv.New(compact)
	require.NoError(t, err)

	rows, err := p.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 1500, rows[0].InitialAmount, 1e-9)
	assert.Equal(t, "2", rows[0].Tranche)
	assert.Equal(t, "25001", rows[0].PurchaseOrder)
}
