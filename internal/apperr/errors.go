// Package apperr defines the error taxonomy shared by services and handlers.
//
// NotFound deliberately covers both "row does not exist" and "caller does not
// own it" so responses never leak whether a resource exists.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed input. Field is the offending form field
// when known.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Validation(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// NotFoundError covers missing resources and ownership failures alike.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFound(msg string) error { return &NotFoundError{Msg: msg} }

// ConflictError reports a uniqueness or state violation: duplicate enrollment,
// double-booked room, already-submitted quiz.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflict(msg string) error { return &ConflictError{Msg: msg} }

// PersistenceError wraps a database failure. The enclosing write has been
// rolled back by the time it propagates.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) error { return &PersistenceError{Op: op, Err: err} }

// FromUnique maps a driver-reported unique violation to Conflict so the
// database constraint and the pre-write existence check surface the same way.
// Anything else is a persistence failure.
func FromUnique(err error, conflictMsg, op string) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key") {
		return Conflict(conflictMsg)
	}
	return Persistence(op, err)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var v *NotFoundError
	return errors.As(err, &v)
}

func IsConflict(err error) bool {
	var v *ConflictError
	return errors.As(err, &v)
}
