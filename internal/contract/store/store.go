package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marches/internal/contract"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectContractColumns = `
	code, label, supplier, kind, base_amount, notified_on, starts_on, ends_on, notes, created_at, updated_at
`

func scanContract(s scanner) (*contract.Contract, error) {
	var c contract.Contract

	var kind string

	if err := s.Scan(
		&c.Code, &c.Label, &c.Supplier, &kind, &c.BaseAmount,
		&c.NotifiedOn, &c.StartsOn, &c.EndsOn, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.Kind = contract.Kind(kind)

	return &c, nil
}

const selectAmendmentColumns = `id, contract_code, sequence, label, amount, kind, dated_on, rationale`

func scanAmendment(s scanner) (*contract.Amendment, error) {
	var a contract.Amendment

	var kind string

	if err := s.Scan(&a.ID, &a.ContractCode, &a.Sequence, &a.Label, &a.Amount, &kind, &a.DatedOn, &a.Rationale); err != nil {
		return nil, err
	}

	a.Kind = contract.ModificationKind(kind)

	return &a, nil
}

const selectTrancheColumns = `id, contract_code, code, label, amount, position`

func scanTranche(s scanner) (*contract.Tranche, error) {
	var t contract.Tranche

	if err := s.Scan(&t.ID, &t.ContractCode, &t.Code, &t.Label, &t.Amount, &t.Position); err != nil {
		return nil, err
	}

	return &t, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, contract.ErrNotFound)
	}

	return fmt.Errorf("getting %s: %w", what, err)
}

// utc keeps stored timestamps comparable as text on SQLite.
func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	return new(t.UTC())
}

func (s *Store) GetContract(ctx context.Context, code string) (*contract.Contract, error) {
	query := `SELECT ` + selectContractColumns + ` FROM contracts WHERE code = $1`

	c, err := scanContract(s.db.QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, notFound(err, "contract "+code)
	}

	return c, nil
}

func (s *Store) ListContracts(ctx context.Context) ([]*contract.Contract, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectContractColumns+` FROM contracts ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var out []*contract.Contract

	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Store) UpsertContract(ctx context.Context, c *contract.Contract) error {
	query := `
		INSERT INTO contracts (code, label, supplier, kind, base_amount, notified_on, starts_on, ends_on, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (code) DO UPDATE SET
			label = excluded.label,
			supplier = excluded.supplier,
			kind = excluded.kind,
			base_amount = excluded.base_amount,
			notified_on = excluded.notified_on,
			starts_on = excluded.starts_on,
			ends_on = excluded.ends_on,
			notes = excluded.notes,
			updated_at = excluded.updated_at
		RETURNING created_at, updated_at
	`

	now := s.now().UTC()

	err := s.db.QueryRowContext(ctx, query,
		c.Code, c.Label, c.Supplier, string(c.Kind), c.BaseAmount,
		utc(c.NotifiedOn), utc(c.StartsOn), utc(c.EndsOn), c.Notes, now,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving contract %s: %w", c.Code, err)
	}

	return nil
}

func (s *Store) ListAmendments(ctx context.Context, contractCode string) ([]*contract.Amendment, error) {
	query := `SELECT ` + selectAmendmentColumns + ` FROM amendments WHERE contract_code = $1 ORDER BY sequence`

	rows, err := s.db.QueryContext(ctx, query, contractCode)
	if err != nil {
		return nil, fmt.Errorf("listing amendments: %w", err)
	}
	defer rows.Close()

	var out []*contract.Amendment

	for rows.Next() {
		a, err := scanAmendment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning amendment: %w", err)
		}

		out = append(out, a)
	}

	return out, rows.Err()
}

func (s *Store) GetAmendment(ctx context.Context, id uuid.UUID) (*contract.Amendment, error) {
	query := `SELECT ` + selectAmendmentColumns + ` FROM amendments WHERE id = $1`

	a, err := scanAmendment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "amendment "+id.String())
	}

	return a, nil
}

func (s *Store) CreateAmendment(ctx context.Context, a *contract.Amendment) error {
	query := `
		INSERT INTO amendments (id, contract_code, sequence, label, amount, kind, dated_on, rationale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	a.ID = uuid.Must(uuid.NewV7())

	if _, err := s.db.ExecContext(ctx, query,
		a.ID, a.ContractCode, a.Sequence, a.Label, a.Amount, string(a.Kind), utc(a.DatedOn), a.Rationale,
	); err != nil {
		return fmt.Errorf("creating amendment: %w", err)
	}

	return nil
}

func (s *Store) UpdateAmendment(ctx context.Context, a *contract.Amendment) error {
	query := `
		UPDATE amendments
		SET sequence = $2, label = $3, amount = $4, kind = $5, dated_on = $6, rationale = $7
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query,
		a.ID, a.Sequence, a.Label, a.Amount, string(a.Kind), utc(a.DatedOn), a.Rationale,
	)
	if err != nil {
		return fmt.Errorf("updating amendment: %w", err)
	}

	return expectOne(res, "amendment "+a.ID.String())
}

func (s *Store) DeleteAmendment(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM amendments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting amendment: %w", err)
	}

	return expectOne(res, "amendment "+id.String())
}

func (s *Store) ListTranches(ctx context.Context, contractCode string) ([]*contract.Tranche, error) {
	query := `SELECT ` + selectTrancheColumns + ` FROM tranches WHERE contract_code = $1 ORDER BY position, code`

	rows, err := s.db.QueryContext(ctx, query, contractCode)
	if err != nil {
		return nil, fmt.Errorf("listing tranches: %w", err)
	}
	defer rows.Close()

	var out []*contract.Tranche

	for rows.Next() {
		t, err := scanTranche(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tranche: %w", err)
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

func (s *Store) GetTranche(ctx context.Context, id uuid.UUID) (*contract.Tranche, error) {
	query := `SELECT ` + selectTrancheColumns + ` FROM tranches WHERE id = $1`

	t, err := scanTranche(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "tranche "+id.String())
	}

	return t, nil
}

func (s *Store) CreateTranche(ctx context.Context, t *contract.Tranche) error {
	query := `
		INSERT INTO tranches (id, contract_code, code, label, amount, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	t.ID = uuid.Must(uuid.NewV7())

	if _, err := s.db.ExecContext(ctx, query, t.ID, t.ContractCode, t.Code, t.Label, t.Amount, t.Position); err != nil {
		return fmt.Errorf("creating tranche %s/%s: %w", t.ContractCode, t.Code, err)
	}

	return nil
}

func (s *Store) UpdateTranche(ctx context.Context, t *contract.Tranche) error {
	query := `UPDATE tranches SET code = $2, label = $3, amount = $4, position = $5 WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, t.ID, t.Code, t.Label, t.Amount, t.Position)
	if err != nil {
		return fmt.Errorf("updating tranche: %w", err)
	}

	return expectOne(res, "tranche "+t.ID.String())
}

func (s *Store) DeleteTranche(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tranches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting tranche: %w", err)
	}

	return expectOne(res, "tranche "+id.String())
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s: %w", what, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", what, contract.ErrNotFound)
	}

	return nil
}
