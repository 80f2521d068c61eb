package requester

import (
	"errors"
	"fmt"
	"time"

	"github.com/billie-coop/minefile/internal/channel"
)

// ErrSuperseded is returned to a request whose wait was cut short because
// the same Requester issued a newer one.
var ErrSuperseded = errors.New("superseded by a newer request")

// TimeoutError reports that no matching response arrived in time.
// errors.Is(err, channel.ErrTimedOut) holds.
type TimeoutError struct {
	Kind         string
	ID           string
	RequestPath  string
	ResponsePath string
	After        time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request %s: no response on %s within %s (request written to %s; is the worker running?)",
		e.Kind, e.ID, e.ResponsePath, e.After, e.RequestPath)
}

// Is makes the error match channel.ErrTimedOut.
func (e *TimeoutError) Is(target error) bool { return target == channel.ErrTimedOut }

// StaleResponseError describes a response that answered some other request.
// Request never returns it; it is what gets logged when one is discarded.
type StaleResponseError struct {
	WantID  string
	GotID   string
	GotSeq  uint64
	WantSeq uint64
}

func (e *StaleResponseError) Error() string {
	return fmt.Sprintf("stale response %s (seq %d), waiting for %s (seq %d)", e.GotID, e.GotSeq, e.WantID, e.WantSeq)
}

// WorkerError carries a failure reported by the worker in its response.
type WorkerError struct {
	Kind    string
	ID      string
	Message string
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker rejected %s request %s: %s", e.Kind, e.ID, e.Message)
}
