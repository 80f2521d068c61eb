package protocol

import (
	"fmt"
)

// maxSnippet bounds how much offending input a ParseError keeps.
const maxSnippet = 64

// ParseError reports content that does not match the expected schema.
// Workers log it and keep polling; requesters return it to the caller.
type ParseError struct {
	// What was being decoded, e.g. "envelope", "board request"
	What string

	// Input is a truncated copy of the offending content
	Input string

	// Err is the underlying cause, may be nil
	Err error
}

// NewParseError builds a ParseError, truncating the input snippet.
func NewParseError(what string, input []byte, err error) *ParseError {
	s := string(input)
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "..."
	}
	return &ParseError{What: what, Input: s, Err: err}
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.What, e.Input, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.What, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }
