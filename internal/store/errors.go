package store

import (
	"errors"
	"fmt"
)

var (
	// ErrCardNotFound is returned by GetCard for an unknown id.
	ErrCardNotFound = errors.New("card not found")
	// ErrPendingNotFound is returned by GetPending for an unknown id.
	ErrPendingNotFound = errors.New("pending entry not found")
	// ErrEmptyCard rejects a card whose front or back is blank.
	ErrEmptyCard = errors.New("card front and back must not be empty")
)

// InitError means the database could not be opened or migrated.
type InitError struct {
	Path string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init store %s: %v", e.Path, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// WriteError wraps a failed insert, update or delete.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError wraps a failed query.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
