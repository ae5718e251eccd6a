package extract

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned when no result row satisfies the provided match
// criteria, or when no criteria were provided at all. An unfiltered run is
// rejected rather than silently resolved to the first row.
var ErrNoMatch = errors.New("no result row matches the search criteria")

// ParseError reports a malformed displayed value (clock time or price text).
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// PairingError reports a segment sequence that cannot be paired into legs.
// It aborts the enclosing row's extraction only; sibling directions are
// unaffected.
type PairingError struct {
	Segments int
	Err      error
}

func (e *PairingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot pair %d segments into legs: %v", e.Segments, e.Err)
	}
	return fmt.Sprintf("cannot pair %d segments into legs", e.Segments)
}

func (e *PairingError) Unwrap() error {
	return e.Err
}
