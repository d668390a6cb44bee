package core

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by the ledger matches at least one of these with errors.Is.
var (
	ErrLocking    = errors.New("ledger lock unavailable")
	ErrStorage    = errors.New("storage failure")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrImport     = errors.New("import failed")
)

// StorageError wraps a driver error with the operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// ImportError identifies the offending line of an import source.
// Line numbers are 1-based and the header is line 1.
type ImportError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: line %d: %s: %v", ErrImport, e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: line %d: %s", ErrImport, e.Line, e.Reason)
}

func (e *ImportError) Unwrap() error { return e.Err }

func (e *ImportError) Is(target error) bool { return target == ErrImport }
