package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// SyntheticHash is recorded for sources that are not files, such as rows
// pushed from another database.
const SyntheticHash = "synthetic"

// Fingerprint identifies the content of a source at a point in time.
type Fingerprint struct {
	Size    int64
	Hash    string
	ModTime time.Time
}

type Fingerprinter interface {
	Fingerprint(ctx context.Context, key string) (Fingerprint, error)
}

// FileFingerprinter treats source keys as file paths.
type FileFingerprinter struct{}

func (FileFingerprinter) Fingerprint(_ context.Context, path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Fingerprint{}, fmt.Errorf("stat source: %w", err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Fingerprint{}, fmt.Errorf("hashing source: %w", err)
	}

	return Fingerprint{
		Size:    info.Size(),
		Hash:    hex.EncodeToString(h.Sum(nil)),
		ModTime: info.ModTime(),
	}, nil
}
