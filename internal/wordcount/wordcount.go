// Package wordcount counts words in journal entries.
package wordcount

import (
	"strconv"
	"strings"

	"github.com/billie-coop/minefile/internal/protocol"
)

// Count returns the number of whitespace separated tokens in text.
func Count(text string) int {
	return len(strings.Fields(text))
}

// Format renders a count as response text.
func Format(n int) string { return strconv.Itoa(n) }

// Parse decodes response text holding a single non-negative integer.
func Parse(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, protocol.NewParseError("word count", []byte(text), err)
	}
	if n < 0 {
		return 0, protocol.NewParseError("word count", []byte(text), strconv.ErrRange)
	}
	return n, nil
}
