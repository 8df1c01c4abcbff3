package repository

import (
	"errors"

	"gorm.io/gorm"
)

// StoreError wraps a failed store call. The wrapped error's message is what
// the store reported and may be shown to the user as is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "repository: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Message returns the store-provided text without the operation prefix.
func (e *StoreError) Message() string {
	return e.Err.Error()
}

// wrap leaves nil and record-not-found untouched so callers can match
// gorm.ErrRecordNotFound directly.
func wrap(op string, err error) error {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
