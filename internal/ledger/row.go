package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Row is one invoice line of the contract-tracking workbook, after the
// column mapping done at import time.
type Row struct {
	Contract      string
	Supplier      string
	Label         string
	ServiceDate   string // yyyy-mm-dd when the source cell held a date
	InvoiceNumber string
	InitialAmount float64
	ServiceAmount float64
	TTCAmount     float64
	Mandate       string
	Tranche       string
	PurchaseOrder string
}

// Values returns the attributes in hashing order.
func (r Row) Values() []string {
	return []string{
		r.Contract,
		r.Supplier,
		r.Label,
		r.ServiceDate,
		r.InvoiceNumber,
		formatNumber(r.InitialAmount),
		formatNumber(r.ServiceAmount),
		formatNumber(r.TTCAmount),
		r.Mandate,
		r.Tranche,
		r.PurchaseOrder,
	}
}

// Hash is the row identity in the cache: a hex SHA-256 over every attribute
// in order. Each value is length-prefixed, so an empty value still occupies
// its position and "a|" can never collide with "|a".
func (r Row) Hash() string {
	h := sha256.New()

	for _, v := range r.Values() {
		h.Write([]byte(strconv.Itoa(len(v))))
		h.Write([]byte{':'})
		h.Write([]byte(v))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HashedRow pairs a row with its content hash.
type HashedRow struct {
	Hash string
	Row  Row
}

// hashRows hashes rows in order, keeping the first occurrence of each hash.
// It returns the number of dropped duplicates.
func hashRows(rows []Row) ([]HashedRow, int) {
	seen := make(map[string]struct{}, len(rows))
	out := make([]HashedRow, 0, len(rows))

	for _, r := range rows {
		h := r.Hash()
		if _, dup := seen[h]; dup {
			continue
		}

		seen[h] = struct{}{}
		out = append(out, HashedRow{Hash: h, Row: r})
	}

	return out, len(rows) - len(out)
}
