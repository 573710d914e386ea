package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/marches/internal/contract"
	"github.com/MrJamesThe3rd/marches/internal/contract/store"
	"github.com/MrJamesThe3rd/marches/internal/database"
)

func newService(t *testing.T) *contract.Service {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "overrides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return contract.NewService(store.New(db))
}

func TestStore_ContractRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	notified := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	c := &contract.Contract{
		Code:       "2024_17_1",
		Label:      "Gros oeuvre",
		Supplier:   "BTP Rhône",
		BaseAmount: 120000,
		NotifiedOn: &notified,
		Notes:      "lot 1",
	}
	require.NoError(t, svc.SaveContract(ctx, c))
	assert.False(t, c.CreatedAt.IsZero())

	got, err := svc.GetContract(ctx, "2024_17_1")
	require.NoError(t, err)
	assert.Equal(t, contract.KindClassic, got.Kind)
	assert.Equal(t, 120000.0, got.BaseAmount)
	require.NotNil(t, got.NotifiedOn)
	assert.True(t, notified.Equal(*got.NotifiedOn))
	assert.Nil(t, got.EndsOn)

	c.BaseAmount = 130000
	c.Kind = contract.KindPurchaseOrder
	require.NoError(t, svc.SaveContract(ctx, c))

	got, err = svc.GetContract(ctx, "2024_17_1")
	require.NoError(t, err)
	assert.Equal(t, 130000.0, got.BaseAmount)
	assert.Equal(t, contract.KindPurchaseOrder, got.Kind)

	all, err := svc.ListContracts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.GetContract(ctx, "missing")
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestStore_TotalAmount(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.SaveContract(ctx, &contract.Contract{Code: "M1", BaseAmount: 10000}))

	require.NoError(t, svc.AddAmendment(ctx, &contract.Amendment{ContractCode: "M1", Kind: contract.Increase, Amount: 1500}))
	require.NoError(t, svc.AddAmendment(ctx, &contract.Amendment{ContractCode: "M1", Kind: contract.Decrease, Amount: 500}))
	require.NoError(t, svc.AddTranche(ctx, &contract.Tranche{ContractCode: "M1", Code: "TO1", Amount: 4000, Position: 1}))

	amendments, err := svc.ListAmendments(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, amendments, 2)
	assert.Equal(t, 1, amendments[0].Sequence)
	assert.Equal(t, 2, amendments[1].Sequence)

	total, err := svc.TotalAmount(ctx, "M1")
	require.NoError(t, err)
	assert.InDelta(t, 10000+1500-500+4000, total, 1e-9)

	total, err = svc.TotalAmount(ctx, "unknown")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestStore_TrancheUniquePerContract(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.SaveContract(ctx, &contract.Contract{Code: "M1"}))
	require.NoError(t, svc.AddTranche(ctx, &contract.Tranche{ContractCode: "M1", Code: "TO1", Amount: 10}))

	err := svc.AddTranche(ctx, &contract.Tranche{ContractCode: "M1", Code: "to1", Amount: 20})
	assert.Error(t, err)
}

func TestStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.SaveContract(ctx, &contract.Contract{Code: "M1"}))

	a := &contract.Amendment{ContractCode: "M1", Kind: contract.Increase, Amount: 100}
	require.NoError(t, svc.AddAmendment(ctx, a))

	a.Amount = 250
	a.Kind = contract.Decrease
	require.NoError(t, svc.UpdateAmendment(ctx, a))

	amendments, err := svc.ListAmendments(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, amendments, 1)
	assert.Equal(t, -250.0, amendments[0].Signed())

	tr := &contract.Tranche{ContractCode: "M1", Code: "TO1", Amount: 10}
	require.NoError(t, svc.AddTranche(ctx, tr))

	tr.Amount = 99
	require.NoError(t, svc.UpdateTranche(ctx, tr))

	tranches, err := svc.ListTranches(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, tranches, 1)
	assert.Equal(t, 99.0, tranches[0].Amount)

	require.NoError(t, svc.DeleteAmendment(ctx, a.ID))
	require.NoError(t, svc.DeleteTranche(ctx, tr.ID))

	assert.ErrorIs(t, svc.DeleteAmendment(ctx, a.ID), contract.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTranche(ctx, uuid.New()), contract.ErrNotFound)
}
