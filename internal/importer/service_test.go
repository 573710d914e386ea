package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/marches/internal/importer"
	"github.com/MrJamesThe3rd/marches/internal/importer/layout"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

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

func writeSource(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	content := "contract;supplier;label;date;invoice;initial;sf;ttc;mandate;tranche;po\n" +
		"2024_17_1;ACME;Works;2024-01-15;F1;1000;100;120;M1;;24001\n" +
		"2024_17_2;ACME;Works;2024-01-16;F2;2000;0;0;;;24002\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path   string
		want   importer.Format
		wantOK bool
	}{
		{path: "suivi.xlsx", want: importer.FormatXLSX, wantOK: true},
		{path: "/data/SUIVI.XLSM", want: importer.FormatXLSX, wantOK: true},
		{path: "export.csv", want: importer.FormatCSV, wantOK: true},
		{path: "notes.pdf", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := importer.FormatOf(tt.path)
		assert.Equal(t, tt.wantOK, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestService_SyncFile(t *testing.T) {
	ctx := context.Background()

	t.Run("NeedsSync", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		syncer := importer.NewMockSyncer(ctrl)
		path := writeSource(t, "suivi.csv")

		syncer.EXPECT().NeedsSync(gomock.Any(), path).Return(true, ledger.ReasonContentChanged)
		syncer.EXPECT().
			Sync(gomock.Any(), path, gomock.Len(2), ledger.SyncOptions{Force: true}).
			DoAndReturn(func(_ context.Context, key string, rows []ledger.Row, _ ledger.SyncOptions) ledger.Stats {
				assert.Equal(t, "2024_17_1", rows[0].Contract)
				assert.InDelta(t, 120, rows[0].TTCAmount, 1e-9)
				assert.Equal(t, "2024_17_2", rows[1].Contract)

				return ledger.Stats{SourceKey: key, Status: ledger.StatusSuccess, Inserted: len(rows)}
			})

		svc, err := importer.NewService(compact, syncer, nil)
		require.NoError(t, err)

		stats, err := svc.SyncFile(ctx, path, false)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusSuccess, stats.Status)
		assert.Equal(t, 2, stats.Inserted)
	})

	t.Run("Unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		syncer := importer.NewMockSyncer(ctrl)
		path := writeSource(t, "suivi.csv")

		syncer.EXPECT().NeedsSync(gomock.Any(), path).Return(false, ledger.ReasonUnchanged)

		svc, err := importer.NewService(compact, syncer, nil)
		require.NoError(t, err)

		stats, err := svc.SyncFile(ctx, path, false)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusSkipped, stats.Status)
		assert.Equal(t, string(ledger.ReasonUnchanged), stats.Message)
	})

	t.Run("ForceSkipsCheck", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		syncer := importer.NewMockSyncer(ctrl)
		path := writeSource(t, "suivi.csv")

		syncer.EXPECT().
			Sync(gomock.Any(), path, gomock.Any(), ledger.SyncOptions{Force: true}).
			Return(ledger.Stats{Status: ledger.StatusSuccess})

		svc, err := importer.NewService(compact, syncer, nil)
		require.NoError(t, err)

		_, err = svc.SyncFile(ctx, path, true)
		require.NoError(t, err)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		svc, err := importer.NewService(compact, importer.NewMockSyncer(gomock.NewController(t)), nil)
		require.NoError(t, err)

		_, err = svc.SyncFile(ctx, "notes.pdf", true)
		require.ErrorIs(t, err, importer.ErrUnknownFormat)
	})

	t.Run("MissingFile", func(t *testing.T) {
		svc, err := importer.NewService(compact, importer.NewMockSyncer(gomock.NewController(t)), nil)
		require.NoError(t, err)

		_, err = svc.SyncFile(ctx, filepath.Join(t.TempDir(), "gone.csv"), true)
		require.Error(t, err)
	})
}
