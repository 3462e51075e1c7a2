package models

import (
	"errors"
	"fmt"
)

// Document-level failures. These abort ingestion with a specific kind;
// callers match them with errors.Is.
var (
	// ErrEmptyDocument means no text could be extracted at all.
	ErrEmptyDocument = errors.New("document contains no extractable text")
	// ErrUnparsableDocument means the document is structurally unreadable.
	ErrUnparsableDocument = errors.New("document is unreadable")
	// ErrExtractionTimeout means extraction or OCR ran past the caller's
	// deadline. Recoverable: the caller decides whether to retry.
	ErrExtractionTimeout = errors.New("extraction timed out")
)

// AmountParseError is row-scoped: it sends a single row to the skipped
// list and never fails the document.
type AmountParseError struct {
	RawText string
	Reason  string
}

func (e *AmountParseError) Error() string {
	return fmt.Sprintf("cannot resolve amount for row %q: %s", e.RawText, e.Reason)
}
