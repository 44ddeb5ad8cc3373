package types

import "errors"

// Domain errors shared across the engine
var (
	// ErrInvalidQuery is returned for empty or whitespace-only search input
	ErrInvalidQuery = errors.New("query cannot be empty")
	// ErrNotFound is returned when a requested concept doesn't exist
	ErrNotFound = errors.New("concept not found")
	// ErrUnsupportedExpression is returned for malformed constraint expressions
	ErrUnsupportedExpression = errors.New("unsupported expression syntax")

	// Result validation errors
	ErrMissingConcept    = errors.New("match concept is required")
	ErrInvalidMatchKind  = errors.New("invalid match kind")
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
	ErrDuplicateCode     = errors.New("duplicate concept code in result")
	ErrUnorderedResult   = errors.New("result confidences must be non-increasing")
)
