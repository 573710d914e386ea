package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	LatestSnapshot(ctx context.Context, sourceKey string) (*Snapshot, error)
	// LatestSuccessfulSnapshot is the snapshot of the sync that last
	// wrote the row cache, whatever its source.
	LatestSuccessfulSnapshot(ctx context.Context) (*Snapshot, error)
	ListSnapshots(ctx context.Context, sourceKey string, limit int) ([]*Snapshot, error)
	AppendSnapshot(ctx context.Context, snap *Snapshot) error

	ListRows(ctx context.Context, filter ListFilter) ([]Row, error)
	Clear(ctx context.Context) error

	BeginSync(ctx context.Context, sourceKey string) (SyncTx, error)
}

// SyncTx holds the exclusive write lock on the row cache until Commit or
// Rollback.
type SyncTx interface {
	ExistingHashes(ctx context.Context) (map[string]struct{}, error)
	InsertRows(ctx context.Context, rows []HashedRow) error
	DeleteRows(ctx context.Context, hashes []string) error
	AppendSnapshot(ctx context.Context, snap *Snapshot) error
	Commit() error
	Rollback() error
}

type ListFilter struct {
	Contract string
}

type SyncOptions struct {
	Force bool
}

type Service struct {
	repo Repository
	fp   Fingerprinter
	log  *slog.Logger
	now  func() time.Time
}

type Option func(*Service)

func WithFingerprinter(fp Fingerprinter) Option {
	return func(s *Service) { s.fp = fp }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		fp:   FileFingerprinter{},
		log:  slog.Default(),
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NeedsSync compares the current fingerprint of the source with its latest
// snapshot. Modification time alone never triggers a sync. A source that
// is unchanged but was not the last one synced needs a sync, since the
// cache then holds another source's rows.
func (s *Service) NeedsSync(ctx context.Context, sourceKey string) (bool, Reason) {
	snap, err := s.repo.LatestSnapshot(ctx, sourceKey)
	if errors.Is(err, ErrNoSnapshot) {
		return true, ReasonNoSnapshot
	}

	if err != nil {
		s.log.Warn("reading latest snapshot", "source", sourceKey, "error", err)
		return true, ReasonSnapshotRead
	}

	fp, err := s.fp.Fingerprint(ctx, sourceKey)
	if err != nil {
		s.log.Warn("fingerprinting source", "source", sourceKey, "error", err)
		return true, ReasonCannotHash
	}

	if fp.Size != snap.Size {
		return true, ReasonSizeChanged
	}

	if snap.RowCount == 0 {
		return true, ReasonEmptyCache
	}

	if fp.Hash != snap.ContentHash {
		return true, ReasonContentChanged
	}

	last, err := s.repo.LatestSuccessfulSnapshot(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return true, ReasonEmptyCache
	}

	if err != nil {
		s.log.Warn("reading last successful snapshot", "error", err)
		return true, ReasonSnapshotRead
	}

	if last.SourceKey != sourceKey {
		return true, ReasonOtherSource
	}

	return false, ReasonUnchanged
}

// Sync makes the row cache hold exactly rows. Failures are reported in the
// returned Stats; nothing of a failed attempt is left in the cache.
func (s *Service) Sync(ctx context.Context, sourceKey string, rows []Row, opts SyncOptions) Stats {
	start := s.now()
	stats := Stats{SourceKey: sourceKey}

	if !opts.Force {
		needed, reason := s.NeedsSync(ctx, sourceKey)
		if !needed {
			stats.Status = StatusSkipped
			stats.Message = string(reason)
			stats.Duration = s.now().Sub(start)

			s.log.Info("sync skipped", "source", sourceKey, "reason", reason)

			return stats
		}

		s.log.Debug("sync needed", "source", sourceKey, "reason", reason)
	}

	fp := s.fingerprint(ctx, sourceKey)
	hashed, duplicates := hashRows(rows)
	stats.Duplicates = duplicates

	snap := &Snapshot{
		ID:          uuid.Must(uuid.NewV7()),
		SourceKey:   sourceKey,
		Size:        fp.Size,
		ContentHash: fp.Hash,
		RowCount:    len(rows),
		SyncedAt:    s.now().UTC(),
	}
	if !fp.ModTime.IsZero() {
		snap.ModTime = new(fp.ModTime.UTC())
	}

	if err := s.apply(ctx, hashed, snap); err != nil {
		stats.Status = StatusError
		stats.Message = err.Error()
		stats.Duration = s.now().Sub(start)

		s.log.Error("sync failed", "source", sourceKey, "error", err)
		s.recordFailure(ctx, sourceKey, fp, err)

		return stats
	}

	stats.Inserted = snap.Inserted
	stats.Deleted = snap.Deleted
	stats.Unchanged = snap.Unchanged
	stats.Status = StatusSuccess
	stats.Message = snap.Message
	stats.Duration = s.now().Sub(start)

	s.log.Info("sync complete",
		"source", sourceKey,
		"inserted", stats.Inserted,
		"deleted", stats.Deleted,
		"unchanged", stats.Unchanged,
		"duplicates", stats.Duplicates,
		"duration", stats.Duration,
	)

	return stats
}

// apply runs the diff inside one SyncTx. snap is completed with the counts
// and appended before commit.
func (s *Service) apply(ctx context.Context, hashed []HashedRow, snap *Snapshot) error {
	tx, err := s.repo.BeginSync(ctx, snap.SourceKey)
	if err != nil {
		return fmt.Errorf("begin sync: %w", err)
	}
	defer tx.Rollback()

	existing, err := tx.ExistingHashes(ctx)
	if err != nil {
		return fmt.Errorf("read existing hashes: %w", err)
	}

	incoming := make(map[string]struct{}, len(hashed))

	var toInsert []HashedRow

	for _, r := range hashed {
		incoming[r.Hash] = struct{}{}

		if _, ok := existing[r.Hash]; ok {
			snap.Unchanged++
			continue
		}

		toInsert = append(toInsert, r)
	}

	var toDelete []string

	for h := range existing {
		if _, ok := incoming[h]; !ok {
			toDelete = append(toDelete, h)
		}
	}

	slices.Sort(toDelete)

	if len(toInsert) > 0 {
		if err := tx.InsertRows(ctx, toInsert); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
	}

	if len(toDelete) > 0 {
		if err := tx.DeleteRows(ctx, toDelete); err != nil {
			return fmt.Errorf("delete rows: %w", err)
		}
	}

	snap.Inserted = len(toInsert)
	snap.Deleted = len(toDelete)
	snap.Status = StatusSuccess
	snap.Message = fmt.Sprintf("%d inserted, %d deleted, %d unchanged", snap.Inserted, snap.Deleted, snap.Unchanged)

	if err := tx.AppendSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sync: %w", err)
	}

	return nil
}

// fingerprint falls back to a synthetic fingerprint for keys that are not
// files, and to an empty one when the file cannot be read; an empty hash
// never matches, so the next NeedsSync asks for a retry.
func (s *Service) fingerprint(ctx context.Context, sourceKey string) Fingerprint {
	fp, err := s.fp.Fingerprint(ctx, sourceKey)
	if err == nil {
		return fp
	}

	if errors.Is(err, fs.ErrNotExist) {
		return Fingerprint{Hash: SyntheticHash}
	}

	s.log.Warn("fingerprinting source", "source", sourceKey, "error", err)

	return Fingerprint{}
}

// recordFailure appends an error snapshot with a zero row count, which makes
// the next NeedsSync report an empty cache. Best effort: the store that just
// failed may fail again.
func (s *Service) recordFailure(ctx context.Context, sourceKey string, fp Fingerprint, cause error) {
	snap := &Snapshot{
		ID:          uuid.Must(uuid.NewV7()),
		SourceKey:   sourceKey,
		Size:        fp.Size,
		ContentHash: fp.Hash,
		Status:      StatusError,
		Message:     cause.Error(),
		SyncedAt:    s.now().UTC(),
	}

	if err := s.repo.AppendSnapshot(ctx, snap); err != nil {
		s.log.Error("recording failed sync", "source", sourceKey, "error", err)
	}
}

// Load returns the cached rows ordered by contract then service date.
func (s *Service) Load(ctx context.Context, filter ListFilter) ([]Row, error) {
	rows, err := s.repo.ListRows(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading rows: %w", err)
	}

	return rows, nil
}

// Clear empties the row cache and the snapshot log.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	s.log.Info("cache cleared")

	return nil
}

func (s *Service) LatestSnapshot(ctx context.Context, sourceKey string) (*Snapshot, error) {
	return s.repo.LatestSnapshot(ctx, sourceKey)
}

func (s *Service) History(ctx context.Context, sourceKey string, limit int) ([]*Snapshot, error) {
	return s.repo.ListSnapshots(ctx, sourceKey, limit)
}
