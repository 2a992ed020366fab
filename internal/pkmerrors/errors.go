// Package pkmerrors defines the error taxonomy shared across the knowledge
// base packages. Every error returned from a public API method is either one
// of these kinds (wrapped with fmt.Errorf's %w) or a direct wrap of one.
package pkmerrors

import (
	"errors"
	"fmt"
)

// Kind identifies the category of failure.
type Kind int

const (
	// KindIO covers filesystem and persistence failures: can't read/write a
	// note, can't create the knowledge-base directory, rename failed, etc.
	KindIO Kind = iota

	// KindParse covers malformed note content: front-matter that doesn't
	// parse, an invalid relationship line, etc. These are recoverable -
	// callers should skip/log and continue.
	KindParse

	// KindEmbedding covers provider failures: API errors (including
	// rate-limit responses; requests are not retried) and a missing API key.
	KindEmbedding

	// KindVectorStore covers the vector database adapter: open failures,
	// query failures, dimension mismatches.
	KindVectorStore

	// KindInvariant covers a detected violation of a core graph invariant
	// (e.g. an edge referencing a node that isn't in the node map). These
	// should never happen; when they do, the operation is aborted rather
	// than silently corrupting further state.
	KindInvariant

	// KindWatcherOverflow covers the bounded watcher event queue dropping
	// events because the consumer fell behind.
	KindWatcherOverflow
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindEmbedding:
		return "embedding"
	case KindVectorStore:
		return "vector_store"
	case KindInvariant:
		return "invariant_violation"
	case KindWatcherOverflow:
		return "watcher_overflow"
	default:
		return "unknown"
	}
}

// Error is a typed error carrying a Kind plus an optional wrapped cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error without a wrapped cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds an *Error around an existing cause.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Is reports whether err is (or wraps) a pkmerrors.Error of the given kind.
func Is(err error, kind Kind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
