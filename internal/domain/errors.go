package domain

import (
	"errors"
	"fmt"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError is bad caller input. The message is safe to show.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	if e.Message == "" {
		return "validation failed"
	}
	return e.Message
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

var ErrValidation = ValidationError{}

// InternalError hides an infrastructure failure from the caller. Err is kept
// for logging only.
type InternalError struct {
	Op  string
	Err error
}

func (e InternalError) Error() string {
	if e.Op == "" {
		return "internal error"
	}
	return fmt.Sprintf("unexpected error trying to %s knight", e.Op)
}

func (e InternalError) Unwrap() error {
	return e.Err
}

func (e InternalError) Is(target error) bool {
	_, ok := target.(InternalError)
	if ok {
		return true
	}
	_, ok = target.(*InternalError)
	return ok
}

var ErrInternal = InternalError{}

// ErrDuplicate is returned by storage when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate key")
