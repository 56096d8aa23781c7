/*
Package errors defines the failure taxonomy of the part memory core and a
small bounded retry helper for the outbound service calls.
*/
package errors

import (
	"errors"
	"fmt"
)

/*
ConfigurationError signals that a part's collection could not be ensured
when the memory was opened, usually because the vector store is unreachable
or rejected the create request.
*/
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("memory configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

/*
EmbeddingError covers every way an embedding request can go wrong: transport
failure, non-success status, or a response missing the expected vector.
*/
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

/*
StoreError covers vector store failures: create, upsert, query and scroll.
*/
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store: %v", e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Configuration wraps err as a ConfigurationError, passing nil through.
func Configuration(err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{Err: err}
}

// Embeddingf builds an EmbeddingError from a format string.
func Embeddingf(format string, args ...any) error {
	return &EmbeddingError{Err: fmt.Errorf(format, args...)}
}

// Embedding wraps err as an EmbeddingError, passing nil through.
func Embedding(err error) error {
	if err == nil {
		return nil
	}
	var e *EmbeddingError
	if errors.As(err, &e) {
		return err
	}
	return &EmbeddingError{Err: err}
}

// Storef builds a StoreError from a format string.
func Storef(format string, args ...any) error {
	return &StoreError{Err: fmt.Errorf(format, args...)}
}

// Store wraps err as a StoreError, passing nil through.
func Store(err error) error {
	if err == nil {
		return nil
	}
	var e *StoreError
	if errors.As(err, &e) {
		return err
	}
	return &StoreError{Err: err}
}

// IsEmbedding reports whether err is (or wraps) an EmbeddingError.
func IsEmbedding(err error) bool {
	var e *EmbeddingError
	return errors.As(err, &e)
}

// IsStore reports whether err is (or wraps) a StoreError.
func IsStore(err error) bool {
	var e *StoreError
	return errors.As(err, &e)
}

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}
