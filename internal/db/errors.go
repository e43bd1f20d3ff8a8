package db

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned when the requested key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Error wraps a store error with the failed operation name.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
