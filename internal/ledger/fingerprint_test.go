package ledger_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

func TestFileFingerprinter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suivi.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("content v1"), 0o600))

	fp := ledger.FileFingerprinter{}

	first, err := fp.Fingerprint(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), first.Size)
	assert.Len(t, first.Hash, 64)
	assert.False(t, first.ModTime.IsZero())

	again, err := fp.Fingerprint(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first.Hash, again.Hash)

	require.NoError(t, os.WriteFile(path, []byte("content v2"), 0o600))

	changed, err := fp.Fingerprint(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first.Size, changed.Size)
	assert.NotEqual(t, first.Hash, changed.Hash)
}

func TestFileFingerprinter_Missing(t *testing.T) {
	_, err := ledger.FileFingerprinter{}.Fingerprint(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
