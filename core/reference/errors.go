package reference

import (
	"fmt"

	"github.com/jogodabiblia/biblia/core/errors"
)

// NotFoundError indicates a book name that could not be resolved to a
// canonical abbreviation. The parser never surfaces it directly; it is
// always wrapped in an InvalidFormatError before reaching callers.
type NotFoundError struct {
	BookName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book not found: %s", e.BookName)
}

func (e *NotFoundError) Unwrap() error {
	return errors.ErrNotFound
}

// InvalidFormatError indicates a segment that does not match the
// "book chapter:verses" shape, or a book name that did not resolve.
type InvalidFormatError struct {
	Segment string
	Err     error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid reference format: %q", e.Segment)
}

func (e *InvalidFormatError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return errors.ErrInvalidInput
}

// InvalidRangeError indicates a verse range with a non-numeric bound.
type InvalidRangeError struct {
	Token string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid verse range: %q", e.Token)
}

func (e *InvalidRangeError) Unwrap() error {
	return errors.ErrInvalidInput
}

// InvalidVerseError indicates a non-numeric single verse token.
type InvalidVerseError struct {
	Token string
}

func (e *InvalidVerseError) Error() string {
	return fmt.Sprintf("invalid verse number: %q", e.Token)
}

func (e *InvalidVerseError) Unwrap() error {
	return errors.ErrInvalidInput
}
