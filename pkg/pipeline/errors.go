package pipeline

import (
	"fmt"
	"strings"
)

// ValidationError reports every rule the merged entity violated. It is
// raised before any state mutation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// NotFoundError reports a stale local reference: the entity is not in the
// local cache (update/delete) or no longer exists server-side.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// PersistenceError wraps the store's error verbatim for diagnostics. When it
// is returned from an update, the optimistic patch has already been rolled
// back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persistence failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
