package engine

import "errors"

// Sentinel errors for common error conditions.
var (
	// ErrEmptyFrame is returned when ProcessFrame receives an empty or
	// unallocated frame. Unlike "no face", a bad frame is a caller bug.
	ErrEmptyFrame = errors.New("engine: empty frame")

	// ErrClosed is returned when the engine is used after Close.
	ErrClosed = errors.New("engine: closed")

	// ErrInvalidConfig is returned when the supplied config fails
	// validation.
	ErrInvalidConfig = errors.New("engine: invalid config")
)
