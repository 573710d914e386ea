package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/marches/internal/contract"
)

func TestTrancheCode(t *testing.T) {
	tests := []struct {
		marker string
		want   string
	}{
		{"", "TF"},
		{"  ", "TF"},
		{"0", "TF"},
		{"0.0", "TF"},
		{"1", "TO1"},
		{"2.0", "TO2"},
		{"3,0", "TO3"},
		{"1.5", "1.5"},
		{"TO1", "TO1"},
		{"Lot A", "Lot A"},
	}

	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			assert.Equal(t, tt.want, contract.TrancheCode(tt.marker))
		})
	}
}

func TestAmendment_Signed(t *testing.T) {
	assert.Equal(t, 250.0, contract.Amendment{Kind: contract.Increase, Amount: 250}.Signed())
	assert.Equal(t, -250.0, contract.Amendment{Kind: contract.Decrease, Amount: 250}.Signed())
}
