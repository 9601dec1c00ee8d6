package detection

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrModelNotFound is returned when a model file does not exist at
	// the resolved path.
	ErrModelNotFound = errors.New("detection: model file not found")

	// ErrModelLoad is returned when a model file exists but fails to
	// parse or load.
	ErrModelLoad = errors.New("detection: model failed to load")

	// ErrNoBackend is returned when no backend in the chain could load.
	ErrNoBackend = errors.New("detection: no backend available")
)

// BackendError wraps an error with backend context.
type BackendError struct {
	Backend Kind
	Err     error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("detection [%s]: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with backend context.
func WrapError(backend Kind, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Backend: backend, Err: err}
}

// ChainError aggregates load failures across the backend chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "detection chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("detection chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("detection chain: all %d backends failed, last error: %v", len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}
