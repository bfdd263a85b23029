package ingest

import (
	"errors"
	"fmt"
)

// ErrEmptyOwner is returned before any work when no owner id is given.
var ErrEmptyOwner = errors.New("owner id is required")

// PersistenceError reports that the store rejected the batch. Nothing from
// the batch is visible afterwards; no compensation is attempted.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist blocks: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StageError attaches the failing stage to the stage's own typed error.
// errors.As still reaches the underlying DocumentParseError,
// InferenceError, SchemaViolationError or PersistenceError.
type StageError struct {
	Stage     State
	RequestID string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Stage reports the stage an ingestion error came from.
func Stage(err error) (State, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
