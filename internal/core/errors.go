package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when a required backend was never configured
	ErrNotConfigured = errors.New("backend not configured")
	// ErrCorpusNotLoaded is returned when retrieval is requested before a corpus is loaded
	ErrCorpusNotLoaded = errors.New("corpus not loaded")
	// ErrNotIndexed is returned when attaching to a similarity store that holds no documents
	ErrNotIndexed = errors.New("similarity store holds no documents")
	// ErrPromptTooLong is returned when a prompt cannot fit the completion service's size limit
	ErrPromptTooLong = errors.New("prompt exceeds size limit")
)

// RetrievalError wraps a failure of the similarity store or knowledge store
type RetrievalError struct {
	Mode string
	Err  error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed (%s): %v", e.Mode, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// GenerationError wraps a failure of the completion service and carries the
// upstream message
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
