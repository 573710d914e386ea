package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

type stubFingerprinter struct {
	fp  ledger.Fingerprint
	err error
}

func (s stubFingerprinter) Fingerprint(context.Context, string) (ledger.Fingerprint, error) {
	return s.fp, s.err
}

const sourceKey = "/data/suivi.xlsx"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(repo ledger.Repository, fp ledger.Fingerprinter) *ledger.Service {
	return ledger.NewService(repo,
		ledger.WithFingerprinter(fp),
		ledger.WithLogger(quietLogger()),
	)
}

func row(contract, invoice string) ledger.Row {
	return ledger.Row{Contract: contract, InvoiceNumber: invoice, InitialAmount: 100}
}

func hashSet(rows ...ledger.Row) map[string]struct{} {
	out := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		out[r.Hash()] = struct{}{}
	}

	return out
}

func TestService_NeedsSync(t *testing.T) {
	current := ledger.Fingerprint{Size: 2048, Hash: "abc", ModTime: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)}
	earlier := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	type testCase struct {
		name       string
		fp         stubFingerprinter
		setupMock  func(m *ledger.MockRepository)
		wantNeeded bool
		wantReason ledger.Reason
	}

	tests := []testCase{
		{
			name: "NoSnapshot",
			fp:   stubFingerprinter{fp: current},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).Return(nil, ledger.ErrNoSnapshot)
			},
			wantNeeded: true,
			wantReason: ledger.ReasonNoSnapshot,
		},
		{
			name: "SnapshotUnreadable",
			fp:   stubFingerprinter{fp: current},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).Return(nil, errors.New("disk I/O error"))
			},
			wantNeeded: true,
			wantReason: ledger.ReasonSnapshotRead,
		},
		{
			name: "CannotHash",
			fp:   stubFingerprinter{err: errors.New("permission denied")},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).
					Return(&ledger.Snapshot{Size: 2048, ContentHash: "abc", RowCount: 3}, nil)
			},
			wantNeeded: true,
			wantReason: ledger.ReasonCannotHash,
		},
		{
			name: "SizeChanged",
			fp:   stubFingerprinter{fp: current},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).
					Return(&ledger.Snapshot{Size: 1024, ContentHash: "abc", RowCount: 3}, nil)
			},
			wantNeeded: true,
			wantReason: ledger.ReasonSizeChanged,
		},
		{
			name: "EmptyCache",
			fp:   stubFingerprinter{fp: current},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).
					Return(&ledger.Snapshot{Size: 2048, ContentHash: "abc", RowCount: 0}, nil)
			},
			wantNeeded: true,
			wantReason: ledger.ReasonEmptyCache,
		},
		{
			name: "ContentChanged",
			fp:   stubFingerprinter{fp: current},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).
					Return(&ledger.Snapshot{Size: 2048, ContentHash: "old", RowCount: 3}, nil)
			},
			wantNeeded: true,
			wantReason: ledger.ReasonContentChanged,
		},
		{
			name: "TouchedButUnchanged",
			fp:   stubFingerprinter{fp: current},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).
					Return(&ledger.Snapshot{Size: 2048, ContentHash: "abc", RowCount: 3, ModTime: &earlier}, nil)
				m.EXPECT().LatestSuccessfulSnapshot(gomock.Any()).
					Return(&ledger.Snapshot{SourceKey: sourceKey, Status: ledger.StatusSuccess}, nil)
			},
			wantNeeded: false,
			wantReason: ledger.ReasonUnchanged,
		},
		{
			name: "Unchanged",
			fp:   stubFingerprinter{fp: current},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).
					Return(&ledger.Snapshot{Size: 2048, ContentHash: "abc", RowCount: 3, ModTime: &current.ModTime}, nil)
				m.EXPECT().LatestSuccessfulSnapshot(gomock.Any()).
					Return(&ledger.Snapshot{SourceKey: sourceKey, Status: ledger.StatusSuccess}, nil)
			},
			wantNeeded: false,
			wantReason: ledger.ReasonUnchanged,
		},
		{
			name: "OtherSourceLastSynced",
			fp:   stubFingerprinter{fp: current},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).
					Return(&ledger.Snapshot{Size: 2048, ContentHash: "abc", RowCount: 3}, nil)
				m.EXPECT().LatestSuccessfulSnapshot(gomock.Any()).
					Return(&ledger.Snapshot{SourceKey: "database", Status: ledger.StatusSuccess}, nil)
			},
			wantNeeded: true,
			wantReason: ledger.ReasonOtherSource,
		},
		{
			name: "NoSuccessfulSync",
			fp:   stubFingerprinter{fp: current},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).
					Return(&ledger.Snapshot{Size: 2048, ContentHash: "abc", RowCount: 3}, nil)
				m.EXPECT().LatestSuccessfulSnapshot(gomock.Any()).Return(nil, ledger.ErrNoSnapshot)
			},
			wantNeeded: true,
			wantReason: ledger.ReasonEmptyCache,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tt.setupMock(repo)

			needed, reason := newService(repo, tt.fp).NeedsSync(context.Background(), sourceKey)

			assert.Equal(t, tt.wantNeeded, needed)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestService_Sync_Diff(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, b, c, d := row("M1", "A"), row("M1", "B"), row("M2", "C"), row("M2", "D")
	fp := ledger.Fingerprint{Size: 4096, Hash: "file-hash", ModTime: time.Now()}

	repo := ledger.NewMockRepository(ctrl)
	tx := ledger.NewMockSyncTx(ctrl)

	gomock.InOrder(
		repo.EXPECT().BeginSync(gomock.Any(), sourceKey).Return(tx, nil),
		tx.EXPECT().ExistingHashes(gomock.Any()).Return(hashSet(a, b, c), nil),
		tx.EXPECT().InsertRows(gomock.Any(), []ledger.HashedRow{{Hash: d.Hash(), Row: d}}).Return(nil),
		tx.EXPECT().DeleteRows(gomock.Any(), []string{a.Hash()}).Return(nil),
		tx.EXPECT().AppendSnapshot(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, snap *ledger.Snapshot) error {
				assert.Equal(t, sourceKey, snap.SourceKey)
				assert.Equal(t, int64(4096), snap.Size)
				assert.Equal(t, "file-hash", snap.ContentHash)
				assert.Equal(t, 3, snap.RowCount)
				assert.Equal(t, 1, snap.Inserted)
				assert.Equal(t, 1, snap.Deleted)
				assert.Equal(t, 2, snap.Unchanged)
				assert.Equal(t, ledger.StatusSuccess, snap.Status)
				assert.NotNil(t, snap.ModTime)

				return nil
			}),
		tx.EXPECT().Commit().Return(nil),
	)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	stats := newService(repo, stubFingerprinter{fp: fp}).
		Sync(context.Background(), sourceKey, []ledger.Row{b, c, d}, ledger.SyncOptions{Force: true})

	assert.Equal(t, ledger.StatusSuccess, stats.Status)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 2, stats.Unchanged)
	assert.Equal(t, 0, stats.Duplicates)
}

func TestService_Sync_SkipsUnchangedSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fp := ledger.Fingerprint{Size: 10, Hash: "same"}

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).
		Return(&ledger.Snapshot{Size: 10, ContentHash: "same", RowCount: 2}, nil)
	repo.EXPECT().LatestSuccessfulSnapshot(gomock.Any()).
		Return(&ledger.Snapshot{SourceKey: sourceKey, Status: ledger.StatusSuccess}, nil)

	stats := newService(repo, stubFingerprinter{fp: fp}).
		Sync(context.Background(), sourceKey, []ledger.Row{row("M1", "A")}, ledger.SyncOptions{})

	assert.Equal(t, ledger.StatusSkipped, stats.Status)
	assert.Equal(t, string(ledger.ReasonUnchanged), stats.Message)
	assert.Zero(t, stats.Inserted)
	assert.Zero(t, stats.Deleted)
}

func TestService_Sync_CollapsesDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := row("M1", "A")

	repo := ledger.NewMockRepository(ctrl)
	tx := ledger.NewMockSyncTx(ctrl)

	repo.EXPECT().LatestSnapshot(gomock.Any(), sourceKey).Return(nil, ledger.ErrNoSnapshot)
	repo.EXPECT().BeginSync(gomock.Any(), sourceKey).Return(tx, nil)
	tx.EXPECT().ExistingHashes(gomock.Any()).Return(map[string]struct{}{}, nil)
	tx.EXPECT().InsertRows(gomock.Any(), []ledger.HashedRow{{Hash: a.Hash(), Row: a}}).Return(nil)
	tx.EXPECT().AppendSnapshot(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	stats := newService(repo, stubFingerprinter{fp: ledger.Fingerprint{Size: 1, Hash: "h"}}).
		Sync(context.Background(), sourceKey, []ledger.Row{a, a}, ledger.SyncOptions{})

	assert.Equal(t, ledger.StatusSuccess, stats.Status)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestService_Sync_SyntheticSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	tx := ledger.NewMockSyncTx(ctrl)

	repo.EXPECT().BeginSync(gomock.Any(), "database").Return(tx, nil)
	tx.EXPECT().ExistingHashes(gomock.Any()).Return(map[string]struct{}{}, nil)
	tx.EXPECT().InsertRows(gomock.Any(), gomock.Len(1)).Return(nil)
	tx.EXPECT().AppendSnapshot(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap *ledger.Snapshot) error {
			assert.Equal(t, ledger.SyntheticHash, snap.ContentHash)
			assert.Zero(t, snap.Size)
			assert.Nil(t, snap.ModTime)

			return nil
		})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	notFile := stubFingerprinter{err: fmt.Errorf("opening source: %w", fs.ErrNotExist)}

	stats := newService(repo, notFile).
		Sync(context.Background(), "database", []ledger.Row{row("M1", "A")}, ledger.SyncOptions{Force: true})

	assert.Equal(t, ledger.StatusSuccess, stats.Status)
}

func TestService_Sync_RollsBackOnFailure(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(repo *ledger.MockRepository, tx *ledger.MockSyncTx)
	}

	a, b := row("M1", "A"), row("M1", "B")

	tests := []testCase{
		{
			name: "BeginFails",
			setupMock: func(repo *ledger.MockRepository, _ *ledger.MockSyncTx) {
				repo.EXPECT().BeginSync(gomock.Any(), sourceKey).Return(nil, errors.New("database is locked"))
			},
		},
		{
			name: "InsertFails",
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockSyncTx) {
				repo.EXPECT().BeginSync(gomock.Any(), sourceKey).Return(tx, nil)
				tx.EXPECT().ExistingHashes(gomock.Any()).Return(hashSet(a), nil)
				tx.EXPECT().InsertRows(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
				tx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name: "SnapshotFails",
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockSyncTx) {
				repo.EXPECT().BeginSync(gomock.Any(), sourceKey).Return(tx, nil)
				tx.EXPECT().ExistingHashes(gomock.Any()).Return(hashSet(a), nil)
				tx.EXPECT().InsertRows(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().AppendSnapshot(gomock.Any(), gomock.Any()).Return(errors.New("constraint failed"))
				tx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name: "CommitFails",
			setupMock: func(repo *ledger.MockRepository, tx *ledger.MockSyncTx) {
				repo.EXPECT().BeginSync(gomock.Any(), sourceKey).Return(tx, nil)
				tx.EXPECT().ExistingHashes(gomock.Any()).Return(hashSet(a), nil)
				tx.EXPECT().InsertRows(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().AppendSnapshot(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Commit().Return(errors.New("commit failed"))
				tx.EXPECT().Rollback().Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tx := ledger.NewMockSyncTx(ctrl)
			tt.setupMock(repo, tx)

			repo.EXPECT().AppendSnapshot(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, snap *ledger.Snapshot) error {
					assert.Equal(t, ledger.StatusError, snap.Status)
					assert.Zero(t, snap.RowCount)
					assert.NotEmpty(t, snap.Message)

					return nil
				})

			stats := newService(repo, stubFingerprinter{fp: ledger.Fingerprint{Size: 1, Hash: "h"}}).
				Sync(context.Background(), sourceKey, []ledger.Row{a, b}, ledger.SyncOptions{Force: true})

			require.Equal(t, ledger.StatusError, stats.Status)
			assert.NotEmpty(t, stats.Message)
			assert.Zero(t, stats.Inserted)
		})
	}
}

func TestService_Load(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().ListRows(gomock.Any(), ledger.ListFilter{Contract: "M1"}).
		Return([]ledger.Row{row("M1", "A")}, nil)
	repo.EXPECT().ListRows(gomock.Any(), ledger.ListFilter{}).
		Return(nil, errors.New("no such table"))

	svc := newService(repo, stubFingerprinter{})

	rows, err := svc.Load(context.Background(), ledger.ListFilter{Contract: "M1"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Load(context.Background(), ledger.ListFilter{})
	assert.Error(t, err)
}

func TestService_Clear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().Clear(gomock.Any()).Return(nil)

	assert.NoError(t, newService(repo, stubFingerprinter{}).Clear(context.Background()))
}
