package channel

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimedOut is matched by every TimeoutError.
var ErrTimedOut = errors.New("timed out")

// IOError reports a channel file that could not be read or written.
type IOError struct {
	Path string
	Op   string // "read", "write", "stat"
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("channel %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// TimeoutError reports that no change appeared within the budget.
type TimeoutError struct {
	Path  string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("channel %s: no change after %s", e.Path, e.After)
}

// Is makes errors.Is(err, ErrTimedOut) hold.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimedOut }
