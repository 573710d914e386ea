package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/marches/internal/ledger"
	"github.com/MrJamesThe3rd/marches/internal/scheduler"
)

type fakeSyncer struct {
	calls []string
	force []bool
	stats ledger.Stats
	err   error
}

func (f *fakeSyncer) SyncFile(_ context.Context, path string, force bool) (ledger.Stats, error) {
	f.calls = append(f.calls, path)
	f.force = append(f.force, force)

	return f.stats, f.err
}

func TestScheduler_RunOnce(t *testing.T) {
	syncer := &fakeSyncer{stats: ledger.Stats{Status: ledger.StatusSkipped, Message: "unchanged"}}
	s := scheduler.New(syncer, "/data/suivi.xlsx", nil)

	stats, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusSkipped, stats.Status)
	assert.Equal(t, []string{"/data/suivi.xlsx"}, syncer.calls)
	assert.Equal(t, []bool{false}, syncer.force, "scheduled runs never force")
}

func TestScheduler_RunOnceError(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("locked")}
	s := scheduler.New(syncer, "/data/suivi.xlsx", nil)

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
}

func TestScheduler_Start(t *testing.T) {
	t.Run("NoSource", func(t *testing.T) {
		s := scheduler.New(&fakeSyncer{}, "", nil)
		require.ErrorIs(t, s.Start("@hourly"), scheduler.ErrNoSource)
	})

	t.Run("InvalidSpec", func(t *testing.T) {
		s := scheduler.New(&fakeSyncer{}, "/data/suivi.xlsx", nil)
		require.Error(t, s.Start("every tuesday"))
	})

	tests := []string{"*/15 * * * *", "0 0 2 * * *", "@every 30m"}
	for _, spec := range tests {
		t.Run(spec, func(t *testing.T) {
			s := scheduler.New(&fakeSyncer{}, "/data/suivi.xlsx", nil)
			require.NoError(t, s.Start(spec))
			<-s.Stop().Done()
		})
	}
}
