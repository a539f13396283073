package core

import "errors"

// Error kinds of the render core. Call sites wrap them with fmt.Errorf and
// %w so callers can match with errors.Is regardless of the added context.
var (
	ErrOutOfMemory      = errors.New("out of memory")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidPointer   = errors.New("invalid pointer")
	ErrInvalidArg       = errors.New("invalid argument")
	ErrInvalidSize      = errors.New("invalid size")
	ErrInvalidEnum      = errors.New("invalid enum")
	ErrFileNotFound     = errors.New("file not found")
	ErrBadFormat        = errors.New("bad format")
	ErrNotFound         = errors.New("not found")

	// ErrDevice covers failures reported by the GPU backend: mapping
	// failures, object creation failures.
	ErrDevice = errors.New("device error")
)
