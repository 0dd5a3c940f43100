// Package audit persists the decision artifacts the pipeline produces:
// selection traces and documentation-audit results. Records are the
// evidence for why a template was chosen and why a document passed or
// failed, so storage is append-oriented and retention is explicit.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordKind discriminates what a record captures.
type RecordKind string

const (
	// KindSelection records a template-selection trace.
	KindSelection RecordKind = "selection"

	// KindEvaluation records a document evaluation result.
	KindEvaluation RecordKind = "evaluation"

	// KindFixtureRun records a fixture pack run.
	KindFixtureRun RecordKind = "fixture_run"
)

// Record is one persisted audit artifact.
type Record struct {
	// ID is the record UUID, assigned at creation.
	ID string `json:"id"`

	// Kind classifies the record.
	Kind RecordKind `json:"kind"`

	// TemplateID is the template the artifact concerns, when known.
	TemplateID string `json:"templateId,omitempty"`

	// InputHash is the content hash of the input document, when known.
	InputHash string `json:"inputHash,omitempty"`

	// Outcome is the headline result (decision kind, PASS/FAIL, run
	// status).
	Outcome string `json:"outcome"`

	// Payload is the canonical JSON artifact body.
	Payload []byte `json:"payload"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"createdAt"`
}

// NewRecord creates a record with a fresh UUID and timestamp.
func NewRecord(kind RecordKind, templateID, inputHash, outcome string, payload []byte) *Record {
	return &Record{
		ID:         uuid.New().String(),
		Kind:       kind,
		TemplateID: templateID,
		InputHash:  inputHash,
		Outcome:    outcome,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
}

// Query filters record listings. Zero values mean "no filter".
type Query struct {
	Kind       RecordKind
	TemplateID string
	Since      time.Time
	Limit      int
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("audit record not found")

// Storage is the audit persistence interface.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Get retrieves a record by ID. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records matching the query, newest first.
	List(ctx context.Context, q Query) ([]*Record, error)

	// Count returns the total record count.
	Count(ctx context.Context) (int64, error)

	// DeleteOlderThan removes records created before the cutoff and
	// returns how many were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases storage resources.
	Close() error
}

// StorageError wraps a backend failure with its operation.
type StorageError struct {
	Backend   string
	Operation string
	Err       error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s: %v", e.Backend, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a storage error.
func NewStorageError(backend, operation string, err error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Err: err}
}
