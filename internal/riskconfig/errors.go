package riskconfig

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrReservedProfile   = errors.New("reserved profile")
	ErrInvalidRange      = errors.New("invalid range")
	ErrMalformedValues   = errors.New("malformed values")
	ErrUnregisteredClass = errors.New("unregistered class")
	ErrCorrupt           = errors.New("corrupt configuration document")
)

// PersistenceError reports a failed write. The in-memory change it refers to
// has already been applied.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("saving risk configuration: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
