package stackrec

import (
	"errors"
	"fmt"

	"github.com/hupe1980/stackrec/model"
)

var (
	// ErrModelNotFound is returned when a model artifact is missing at load
	// time. Fatal: the engine never becomes ready without a complete model.
	ErrModelNotFound = errors.New("model not found")

	// ErrEmptyInput is returned when Predict is called with an empty stack.
	ErrEmptyInput = errors.New("input stack is empty")
)

// ErrCorruptModel indicates a model artifact was present but structurally
// invalid (malformed encoding, dimension mismatch, non-injective dictionary).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrCorruptModel struct {
	Artifact string
	Reason   string
	cause    error
}

func (e *ErrCorruptModel) Error() string {
	return fmt.Sprintf("corrupt model: artifact %s: %s", e.Artifact, e.Reason)
}

func (e *ErrCorruptModel) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrModelNotFound, err)
	}

	var corrupt *model.CorruptError
	if errors.As(err, &corrupt) {
		return &ErrCorruptModel{Artifact: corrupt.Artifact, Reason: corrupt.Reason, cause: err}
	}

	return err
}
