package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")

	// ErrUnrecognizedFormat is fatal for the document: no extension or
	// content signature matched any known format.
	ErrUnrecognizedFormat = errors.New("unrecognized format")

	// ErrExtractionFailure means the format was recognized but the
	// content is malformed. Fatal for the document.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrDispatchFailure means an external action sink is unreachable or
	// erroring after retries. Fails the action, never the document.
	ErrDispatchFailure = errors.New("action dispatch failure")

	// ErrPersistenceFailure means the audit sink itself is unavailable.
	// The one truly fatal class: the run halts rather than proceed with
	// an incomplete trail.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
