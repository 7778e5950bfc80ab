/*
errors.go - Shared error taxonomy for the HR system

PURPOSE:
  Four recoverable error classes, surfaced to callers as structured
  responses (validation 400, forbidden 403, not found 404, conflict 409).
  Sentinels for errors.Is checks, structured types for
  context. None of these should ever crash the process.

USAGE:
  Domain packages wrap these with additional context:

    if errors.Is(err, hr.ErrConflict) { ... }

    var nf *hr.NotFoundError
    if errors.As(err, &nf) { ... nf.Entity ... }

SEE ALSO:
  - leave/errors.go: ConflictError carrying the conflicting records
  - api/handlers.go: maps this taxonomy onto HTTP status codes
*/
package hr

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor lacks permission for the
	// requested operation or transition.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for malformed input: missing dates, end
	// before start, unknown leave type, and the like.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when an operation would violate a data
	// invariant: overlapping leave, already-logged attendance, deleting a
	// department that still has employees.
	ErrConflict = errors.New("conflict")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which entity was missing.
type NotFoundError struct {
	Entity string // "employee", "leave request", ...
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ForbiddenError explains which action was denied.
type ForbiddenError struct {
	Action string // e.g. "approve leave request"
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("forbidden: %s", e.Action)
	}
	return fmt.Sprintf("forbidden: %s: %s", e.Action, e.Reason)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// ValidationError points at the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DependentsExistError blocks hard deletes while other records still
// reference the target (employees in a department, subordinates of a
// manager, linked leave/attendance rows).
type DependentsExistError struct {
	Entity     string
	ID         string
	Dependents string // what still references it
}

func (e *DependentsExistError) Error() string {
	return fmt.Sprintf("cannot delete %s %s: %s still reference it", e.Entity, e.ID, e.Dependents)
}

func (e *DependentsExistError) Unwrap() error { return ErrConflict }
