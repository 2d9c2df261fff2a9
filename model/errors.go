package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a model artifact is missing from storage.
// The engine must not start without a complete model.
var ErrNotFound = errors.New("model artifact not found")

// CorruptError indicates an artifact was present but structurally invalid:
// bad encoding, dimension mismatch, non-injective dictionary, or an
// out-of-range package id.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type CorruptError struct {
	Artifact string
	Reason   string
	cause    error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt model artifact %s: %s", e.Artifact, e.Reason)
}

func (e *CorruptError) Unwrap() error { return e.cause }

func corruptf(artifact string, cause error, format string, args ...any) *CorruptError {
	return &CorruptError{
		Artifact: artifact,
		Reason:   fmt.Sprintf(format, args...),
		cause:    cause,
	}
}
