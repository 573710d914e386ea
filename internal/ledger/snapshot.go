package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNoSnapshot = errors.New("no snapshot recorded for source")

type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Reason explains a NeedsSync decision.
type Reason string

const (
	ReasonNoSnapshot     Reason = "no prior snapshot"
	ReasonSnapshotRead   Reason = "cannot read snapshot"
	ReasonCannotHash     Reason = "cannot hash"
	ReasonSizeChanged    Reason = "size changed"
	ReasonEmptyCache     Reason = "empty cache"
	ReasonContentChanged Reason = "content changed"
	ReasonOtherSource    Reason = "cache holds another source"
	ReasonUnchanged      Reason = "unchanged"
)

// Snapshot is one entry of the append-only sync log of a source.
type Snapshot struct {
	ID          uuid.UUID
	SourceKey   string
	Size        int64
	ContentHash string
	ModTime     *time.Time
	RowCount    int
	Inserted    int
	Deleted     int
	Unchanged   int
	Status      Status
	Message     string
	SyncedAt    time.Time
}

// Stats is the outcome of one Sync call.
type Stats struct {
	SourceKey  string
	Inserted   int
	Deleted    int
	Unchanged  int
	Duplicates int
	Duration   time.Duration
	Status     Status
	Message    string
}
