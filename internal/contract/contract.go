package contract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

// Kind is how a contract's committed amount is made up.
type Kind string

const (
	// KindClassic contracts have a firm tranche and optional tranches.
	KindClassic Kind = "CLASSIC"
	// KindPurchaseOrder contracts are consumed through purchase orders.
	KindPurchaseOrder Kind = "PURCHASE_ORDER"
)

func (k Kind) Valid() bool {
	return k == KindClassic || k == KindPurchaseOrder
}

// ModificationKind is the direction of an amendment.
type ModificationKind string

const (
	Increase ModificationKind = "INCREASE"
	Decrease ModificationKind = "DECREASE"
)

func (k ModificationKind) Valid() bool {
	return k == Increase || k == Decrease
}

// Contract holds the manually maintained data of a contract. It overrides
// the amounts found in imported rows.
type Contract struct {
	Code       string
	Label      string
	Supplier   string
	Kind       Kind
	BaseAmount float64 // firm tranche, or whole amount for purchase-order contracts
	NotifiedOn *time.Time
	StartsOn   *time.Time
	EndsOn     *time.Time
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Amendment adjusts a contract's committed amount.
type Amendment struct {
	ID           uuid.UUID
	ContractCode string
	Sequence     int
	Label        string
	Amount       float64
	Kind         ModificationKind
	DatedOn      *time.Time
	Rationale    string
}

// Signed is the contribution of the amendment to the contract total.
func (a Amendment) Signed() float64 {
	if a.Kind == Decrease {
		return -a.Amount
	}

	return a.Amount
}

// Tranche is an explicitly entered tranche amount of a classic contract.
type Tranche struct {
	ID           uuid.UUID
	ContractCode string
	Code         string // TF, TO1, TO2...
	Label        string
	Amount       float64
	Position     int
}

const FirmTrancheCode = "TF"

// TrancheCode maps the tranche marker of an imported row to a tranche code:
// empty or zero is the firm tranche TF, a number n is TO{n}, and anything
// else is kept as written.
func TrancheCode(marker string) string {
	m := strings.TrimSpace(marker)
	if m == "" {
		return FirmTrancheCode
	}

	f, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil || f != float64(int64(f)) {
		return m
	}

	if f == 0 {
		return FirmTrancheCode
	}

	return fmt.Sprintf("TO%d", int64(f))
}
