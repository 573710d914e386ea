package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/MrJamesThe3rd/marches/internal/database"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver, now: time.Now}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectRowColumns = `
	contract, supplier, label, service_date, invoice_number,
	initial_amount, service_amount, ttc_amount, mandate, tranche, purchase_order
`

func scanRow(s scanner) (ledger.Row, error) {
	var r ledger.Row

	err := s.Scan(
		&r.Contract, &r.Supplier, &r.Label, &r.ServiceDate, &r.InvoiceNumber,
		&r.InitialAmount, &r.ServiceAmount, &r.TTCAmount, &r.Mandate, &r.Tranche, &r.PurchaseOrder,
	)

	return r, err
}

const selectSnapshotColumns = `
	id, source_key, size, content_hash, mod_time, row_count,
	inserted, deleted, unchanged, status, message, synced_at
`

func scanSnapshot(s scanner) (*ledger.Snapshot, error) {
	var snap ledger.Snapshot

	var status string

	if err := s.Scan(
		&snap.ID, &snap.SourceKey, &snap.Size, &snap.ContentHash, &snap.ModTime, &snap.RowCount,
		&snap.Inserted, &snap.Deleted, &snap.Unchanged, &status, &snap.Message, &snap.SyncedAt,
	); err != nil {
		return nil, err
	}

	snap.Status = ledger.Status(status)

	return &snap, nil
}

func (s *Store) LatestSnapshot(ctx context.Context, sourceKey string) (*ledger.Snapshot, error) {
	query := `SELECT ` + selectSnapshotColumns + `
		FROM sync_snapshots
		WHERE source_key = $1
		ORDER BY synced_at DESC, id DESC
		LIMIT 1`

	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, query, sourceKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNoSnapshot
	}

	if err != nil {
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}

	return snap, nil
}

func (s *Store) LatestSuccessfulSnapshot(ctx context.Context) (*ledger.Snapshot, error) {
	query := `SELECT ` + selectSnapshotColumns + `
		FROM sync_snapshots
		WHERE status = $1
		ORDER BY synced_at DESC, id DESC
		LIMIT 1`

	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, query, string(ledger.StatusSuccess)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNoSnapshot
	}

	if err != nil {
		return nil, fmt.Errorf("getting last successful snapshot: %w", err)
	}

	return snap, nil
}

func (s *Store) ListSnapshots(ctx context.Context, sourceKey string, limit int) ([]*ledger.Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + selectSnapshotColumns + `
		FROM sync_snapshots
		WHERE source_key = $1
		ORDER BY synced_at DESC, id DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, sourceKey, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*ledger.Snapshot

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}

		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

func (s *Store) AppendSnapshot(ctx context.Context, snap *ledger.Snapshot) error {
	return appendSnapshot(ctx, s.db, snap)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func appendSnapshot(ctx context.Context, db execer, snap *ledger.Snapshot) error {
	query := `
		INSERT INTO sync_snapshots (
			id, source_key, size, content_hash, mod_time, row_count,
			inserted, deleted, unchanged, status, message, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := db.ExecContext(ctx, query,
		snap.ID, snap.SourceKey, snap.Size, snap.ContentHash, snap.ModTime, snap.RowCount,
		snap.Inserted, snap.Deleted, snap.Unchanged, string(snap.Status), snap.Message, snap.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("appending snapshot: %w", err)
	}

	return nil
}

func (s *Store) ListRows(ctx context.Context, filter ledger.ListFilter) ([]ledger.Row, error) {
	query := `SELECT ` + selectRowColumns + ` FROM imported_rows`

	var args []any

	if filter.Contract != "" {
		query += ` WHERE contract = $1`

		args = append(args, filter.Contract)
	}

	query += ` ORDER BY contract, service_date, hash`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rows: %w", err)
	}
	defer rows.Close()

	var out []ledger.Row

	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		out = append(out, r)
	}

	return out, rows.Err()
}

func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	if err := s.lock(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM imported_rows`); err != nil {
		return fmt.Errorf("clearing rows: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sync_snapshots`); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}

	return tx.Commit()
}

// lockKey identifies the row cache for pg_advisory_xact_lock.
func lockKey() int64 {
	h := fnv.New64a()
	h.Write([]byte("imported_rows"))

	return int64(h.Sum64())
}

// lock serialises writers across processes. SQLite transactions are opened
// with _txlock=immediate and already hold the write lock.
func (s *Store) lock(ctx context.Context, tx *sql.Tx) error {
	if s.driver != database.DriverPostgres {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey()); err != nil {
		return fmt.Errorf("acquiring sync lock: %w", err)
	}

	return nil
}

func (s *Store) BeginSync(ctx context.Context, sourceKey string) (ledger.SyncTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sync of %s: %w", sourceKey, err)
	}

	if err := s.lock(ctx, tx); err != nil {
		tx.Rollback()
		return nil, err
	}

	return &syncTx{tx: tx, now: s.now}, nil
}

type syncTx struct {
	tx  *sql.Tx
	now func() time.Time
}

func (t *syncTx) ExistingHashes(ctx context.Context) (map[string]struct{}, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT hash FROM imported_rows`)
	if err != nil {
		return nil, fmt.Errorf("listing hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]struct{})

	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning hash: %w", err)
		}

		hashes[h] = struct{}{}
	}

	return hashes, rows.Err()
}

func (t *syncTx) InsertRows(ctx context.Context, rows []ledger.HashedRow) error {
	stmt, err := t.tx.PrepareContext(ctx, `
		INSERT INTO imported_rows (
			hash, contract, supplier, label, service_date, invoice_number,
			initial_amount, service_amount, ttc_amount, mandate, tranche, purchase_order, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (hash) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	syncedAt := t.now().UTC()

	for _, hr := range rows {
		r := hr.Row
		if _, err := stmt.ExecContext(ctx,
			hr.Hash, r.Contract, r.Supplier, r.Label, r.ServiceDate, r.InvoiceNumber,
			r.InitialAmount, r.ServiceAmount, r.TTCAmount, r.Mandate, r.Tranche, r.PurchaseOrder, syncedAt,
		); err != nil {
			return fmt.Errorf("inserting row %s: %w", hr.Hash, err)
		}
	}

	return nil
}

func (t *syncTx) DeleteRows(ctx context.Context, hashes []string) error {
	stmt, err := t.tx.PrepareContext(ctx, `DELETE FROM imported_rows WHERE hash = $1`)
	if err != nil {
		return fmt.Errorf("preparing delete: %w", err)
	}
	defer stmt.Close()

	for _, h := range hashes {
		if _, err := stmt.ExecContext(ctx, h); err != nil {
			return fmt.Errorf("deleting row %s: %w", h, err)
		}
	}

	return nil
}

func (t *syncTx) AppendSnapshot(ctx context.Context, snap *ledger.Snapshot) error {
	return appendSnapshot(ctx, t.tx, snap)
}

func (t *syncTx) Commit() error {
	return t.tx.Commit()
}

func (t *syncTx) Rollback() error {
	return t.tx.Rollback()
}
