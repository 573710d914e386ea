package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MrJamesThe3rd/marches/internal/importer/csv"
	"github.com/MrJamesThe3rd/marches/internal/importer/layout"
	"github.com/MrJamesThe3rd/marches/internal/importer/xlsx"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

var ErrUnknownFormat = errors.New("unknown import format")

//go:generate mockgen -source=service.go -destination=syncer_mock.go -package=importer

// Syncer is the part of the ledger service the importer drives.
type Syncer interface {
	NeedsSync(ctx context.Context, sourceKey string) (bool, ledger.Reason)
	Sync(ctx context.Context, sourceKey string, rows []ledger.Row, opts ledger.SyncOptions) ledger.Stats
}

type Service struct {
	parsers map[Format]Parser
	ledger  Syncer
	log     *slog.Logger
}

func NewService(l layout.Layout, syncer Syncer, log *slog.Logger) (*Service, error) {
	xp, err := xlsx.New(l)
	if err != nil {
		return nil, err
	}

	cp, err := csv.New(l)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}

	return &Service{
		parsers: map[Format]Parser{
			FormatXLSX: xp,
			FormatCSV:  cp,
		},
		ledger: syncer,
		log:    log,
	}, nil
}

func (s *Service) Parse(format Format, r io.Reader) ([]ledger.Row, error) {
	p, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return p.Parse(r)
}

// SyncFile imports the file at path into the row cache, keyed by path.
// An unchanged file is not parsed at all unless force is set. Errors
// reading or parsing the file are returned; storage failures are
// reported in the stats.
func (s *Service) SyncFile(ctx context.Context, path string, force bool) (ledger.Stats, error) {
	format, ok := FormatOf(path)
	if !ok {
		return ledger.Stats{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	if !force {
		needed, reason := s.ledger.NeedsSync(ctx, path)
		if !needed {
			s.log.Info("source unchanged", "source", path)

			return ledger.Stats{
				SourceKey: path,
				Status:    ledger.StatusSkipped,
				Message:   string(reason),
			}, nil
		}

		s.log.Debug("source needs sync", "source", path, "reason", reason)
	}

	f, err := os.Open(path)
	if err != nil {
		return ledger.Stats{}, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	rows, err := s.Parse(format, f)
	if err != nil {
		return ledger.Stats{}, fmt.Errorf("parse %s: %w", path, err)
	}

	s.log.Debug("source parsed", "source", path, "rows", len(rows))

	return s.ledger.Sync(ctx, path, rows, ledger.SyncOptions{Force: true}), nil
}
