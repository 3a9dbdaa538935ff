package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
	ErrValidation = errors.New("validation failed")
)

// Error is a classified repository error
type Error struct {
	Kind    error
	Entity  string
	ID      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Entity != "" && e.ID != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Entity, e.ID, msg)
	} else if e.Entity != "" {
		msg = fmt.Sprintf("%s: %s", e.Entity, msg)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the kind of this error
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing entity
func NotFound(entity, id string) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id, Message: "not found"}
}

// Validation reports malformed input or a broken invariant
func Validation(entity, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate key or a referential conflict
func Conflict(entity, format string, args ...any) error {
	return &Error{Kind: ErrConflict, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an infrastructure failure
func Storage(op string, err error) error {
	return &Error{Kind: ErrStorage, Message: op, Err: err}
}

// VersionConflictError is returned when an optimistic update finds a
// different stored version than the caller expected.
type VersionConflictError struct {
	Entity   string
	ID       string
	Expected int
	Actual   int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s %s: version conflict (expected %d, current %d)", e.Entity, e.ID, e.Expected, e.Actual)
}

// Is makes version conflicts match ErrConflict
func (e *VersionConflictError) Is(target error) bool {
	return target == ErrConflict
}

// AnyVersion skips the optimistic version check on update
const AnyVersion = 0
