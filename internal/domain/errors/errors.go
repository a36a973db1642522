package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrOperationFailed = errors.New("basket operation failed")
	ErrNotYetLoaded    = errors.New("catalog not yet loaded")
	ErrBodyEmpty       = errors.New("catalog response body empty")
	ErrRetryExhausted  = errors.New("sync retries exhausted")
	ErrInvalidDelta    = errors.New("delta must be +1 or -1")
)

// FetchError wraps a transport or decode failure from the catalog service.
type FetchError struct {
	Kind string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s catalog: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
