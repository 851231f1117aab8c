package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the operation needs a signed-in user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnknownEntity means the table is not exposed by the gateway.
	ErrUnknownEntity = errors.New("entity not found")

	// ErrInvalidParameter means a request body carried a field the caller
	// may not set.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// NoRowsMessage is what a single-row read reports for a missing row.
const NoRowsMessage = "JSON object requested, multiple (or no) rows returned"

// StoreError is a failed store call with the message the store reported.
// Handlers pass Message through unchanged.
type StoreError struct {
	Message string
	Err     error
}

func (e *StoreError) Error() string { return e.Message }

func (e *StoreError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidParameter }
