package service

import (
	"errors"
	"fmt"
)

// Errors returned by the application services.
var (
	// ErrNotFound indicates the goal or contact does not exist or has no owner.
	ErrNotFound = errors.New("not found")

	// ErrEmbeddingUnavailable indicates the goal's embedding could not be
	// obtained. The request may succeed if retried.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrStoreUnavailable indicates goals or contacts could not be read. It
	// wraps ErrEmbeddingUnavailable so callers treat it as retryable.
	ErrStoreUnavailable = fmt.Errorf("store unavailable: %w", ErrEmbeddingUnavailable)

	// ErrInvalidInput indicates a record failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("affinity: client is closed")
)
