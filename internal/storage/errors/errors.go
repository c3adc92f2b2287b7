// Package errors provides custom errors for types implementing the
// LinkStorage interface.
package errors

import (
	"fmt"
)

type (
	// NotFoundError is returned when no link matches the requested id or
	// source path.
	NotFoundError struct {
		Key string
		Err error
	}
	// AlreadyExistsError is returned when a create or update would violate
	// the uniqueness of a source path. Callers rely on this kind being
	// distinguishable from generic storage failure.
	AlreadyExistsError struct {
		Source string
		Err    error
	}
	// ContextTimeoutExceededError is returned when a storage operation was
	// cut short by context expiry.
	ContextTimeoutExceededError struct {
		Err error
	}
	StatementError struct {
		Err error
	}
	ExecutionError struct {
		Err error
	}
	ScanningError struct {
		Err error
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found in storage", e.Key)
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s: already exists in storage", e.Source)
}

func (e *ContextTimeoutExceededError) Error() string {
	return fmt.Sprintf("%s: context timeout exceeded", e.Err.Error())
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s: could not compile statement", e.Err.Error())
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: could not query", e.Err.Error())
}

func (e *ScanningError) Error() string {
	return fmt.Sprintf("%s: could not scan rows", e.Err.Error())
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *AlreadyExistsError) Unwrap() error {
	return e.Err
}

func (e *ContextTimeoutExceededError) Unwrap() error {
	return e.Err
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ScanningError) Unwrap() error {
	return e.Err
}
