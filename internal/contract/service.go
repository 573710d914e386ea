package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=contract
type Repository interface {
	GetContract(ctx context.Context, code string) (*Contract, error)
	ListContracts(ctx context.Context) ([]*Contract, error)
	UpsertContract(ctx context.Context, c *Contract) error

	ListAmendments(ctx context.Context, contractCode string) ([]*Amendment, error)
	GetAmendment(ctx context.Context, id uuid.UUID) (*Amendment, error)
	CreateAmendment(ctx context.Context, a *Amendment) error
	UpdateAmendment(ctx context.Context, a *Amendment) error
	DeleteAmendment(ctx context.Context, id uuid.UUID) error

	ListTranches(ctx context.Context, contractCode string) ([]*Tranche, error)
	GetTranche(ctx context.Context, id uuid.UUID) (*Tranche, error)
	CreateTranche(ctx context.Context, t *Tranche) error
	UpdateTranche(ctx context.Context, t *Tranche) error
	DeleteTranche(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetContract(ctx context.Context, code string) (*Contract, error) {
	return s.repo.GetContract(ctx, strings.TrimSpace(code))
}

func (s *Service) ListContracts(ctx context.Context) ([]*Contract, error) {
	return s.repo.ListContracts(ctx)
}

// ListAmendments returns the amendments of a contract by sequence number.
func (s *Service) ListAmendments(ctx context.Context, code string) ([]*Amendment, error) {
	return s.repo.ListAmendments(ctx, strings.TrimSpace(code))
}

// ListTranches returns the tranches of a contract by display position.
func (s *Service) ListTranches(ctx context.Context, code string) ([]*Tranche, error) {
	return s.repo.ListTranches(ctx, strings.TrimSpace(code))
}

// TotalAmount is the committed amount of a contract: its base amount plus
// signed amendments, plus the entered tranches for classic contracts.
// A non-zero base amount is the firm tranche, so an entered TF tranche
// only counts when the base is zero. Unknown contracts total zero.
func (s *Service) TotalAmount(ctx context.Context, code string) (float64, error) {
	c, err := s.GetContract(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	total := c.BaseAmount

	amendments, err := s.ListAmendments(ctx, c.Code)
	if err != nil {
		return 0, fmt.Errorf("listing amendments: %w", err)
	}

	for _, a := range amendments {
		total += a.Signed()
	}

	if c.Kind != KindClassic {
		return total, nil
	}

	tranches, err := s.ListTranches(ctx, c.Code)
	if err != nil {
		return 0, fmt.Errorf("listing tranches: %w", err)
	}

	for _, t := range tranches {
		if c.BaseAmount > 0 && t.Code == FirmTrancheCode {
			continue
		}

		total += t.Amount
	}

	return total, nil
}

func (s *Service) SaveContract(ctx context.Context, c *Contract) error {
	c.Code = strings.TrimSpace(c.Code)
	if c.Code == "" {
		return fmt.Errorf("%w: contract code is required", ErrInvalid)
	}

	if c.Kind == "" {
		c.Kind = KindClassic
	}

	if !c.Kind.Valid() {
		return fmt.Errorf("%w: contract kind %q", ErrInvalid, c.Kind)
	}

	if c.BaseAmount < 0 {
		return fmt.Errorf("%w: base amount cannot be negative", ErrInvalid)
	}

	return s.repo.UpsertContract(ctx, c)
}

// AddAmendment appends an amendment; a zero sequence takes the next free one.
func (s *Service) AddAmendment(ctx context.Context, a *Amendment) error {
	if err := validateAmendment(a); err != nil {
		return err
	}

	if _, err := s.repo.GetContract(ctx, a.ContractCode); err != nil {
		return err
	}

	if a.Sequence == 0 {
		existing, err := s.repo.ListAmendments(ctx, a.ContractCode)
		if err != nil {
			return fmt.Errorf("listing amendments: %w", err)
		}

		for _, e := range existing {
			a.Sequence = max(a.Sequence, e.Sequence)
		}

		a.Sequence++
	}

	return s.repo.CreateAmendment(ctx, a)
}

func (s *Service) UpdateAmendment(ctx context.Context, a *Amendment) error {
	current, err := s.repo.GetAmendment(ctx, a.ID)
	if err != nil {
		return err
	}

	a.ContractCode = current.ContractCode
	if a.Sequence == 0 {
		a.Sequence = current.Sequence
	}

	if err := validateAmendment(a); err != nil {
		return err
	}

	return s.repo.UpdateAmendment(ctx, a)
}

func (s *Service) DeleteAmendment(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAmendment(ctx, id)
}

func validateAmendment(a *Amendment) error {
	a.ContractCode = strings.TrimSpace(a.ContractCode)
	if a.ContractCode == "" {
		return fmt.Errorf("%w: contract code is required", ErrInvalid)
	}

	if !a.Kind.Valid() {
		return fmt.Errorf("%w: modification kind %q", ErrInvalid, a.Kind)
	}

	if a.Amount < 0 {
		return fmt.Errorf("%w: amendment amount cannot be negative, use %s", ErrInvalid, Decrease)
	}

	return nil
}

func (s *Service) AddTranche(ctx context.Context, t *Tranche) error {
	if err := validateTranche(t); err != nil {
		return err
	}

	if _, err := s.repo.GetContract(ctx, t.ContractCode); err != nil {
		return err
	}

	return s.repo.CreateTranche(ctx, t)
}

func (s *Service) UpdateTranche(ctx context.Context, t *Tranche) error {
	current, err := s.repo.GetTranche(ctx, t.ID)
	if err != nil {
		return err
	}

	t.ContractCode = current.ContractCode

	if err := validateTranche(t); err != nil {
		return err
	}

	return s.repo.UpdateTranche(ctx, t)
}

func (s *Service) DeleteTranche(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTranche(ctx, id)
}

func validateTranche(t *Tranche) error {
	t.ContractCode = strings.TrimSpace(t.ContractCode)
	t.Code = strings.ToUpper(strings.TrimSpace(t.Code))

	if t.ContractCode == "" {
		return fmt.Errorf("%w: contract code is required", ErrInvalid)
	}

	if t.Code == "" {
		return fmt.Errorf("%w: tranche code is required", ErrInvalid)
	}

	if t.Amount < 0 {
		return fmt.Errorf("%w: tranche amount cannot be negative", ErrInvalid)
	}

	return nil
}
