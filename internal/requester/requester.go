package requester

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/billie-coop/minefile/internal/channel"
	"github.com/billie-coop/minefile/internal/protocol"
	"github.com/billie-coop/minefile/internal/protocol/codec"
)

// DefaultTimeout bounds every request unless configured otherwise.
const DefaultTimeout = 30 * time.Second

// Response is the worker's answer to one request.
type Response struct {
	ID   string
	Seq  uint64
	Kind string
	Body string
}

// Requester issues requests over one request/response channel pair.
// It is safe for concurrent use; a newer request supersedes an older one
// that is still waiting.
type Requester struct {
	req     *channel.Channel
	resp    *channel.Channel
	framing protocol.Framing
	codec   codec.Codec
	timeout time.Duration
	logger  *zap.Logger

	seq   atomic.Uint64
	newID func() string

	// Outstanding request, canceled when superseded
	mu         sync.Mutex
	activeID   string
	cancelWait context.CancelCauseFunc
	writeMu    sync.Mutex
}

// Option configures a Requester.
type Option func(*Requester)

// WithFraming selects envelope (default) or raw framing.
func WithFraming(f protocol.Framing) Option {
	return func(r *Requester) { r.framing = f }
}

// WithCodec selects the envelope codec (default JSON).
func WithCodec(c codec.Codec) Option {
	return func(r *Requester) { r.codec = c }
}

// WithTimeout bounds how long Request waits for a response.
func WithTimeout(d time.Duration) Option {
	return func(r *Requester) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Requester) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a requester writing to req and reading answers from resp.
// req and resp may refer to the same file.
func New(req, resp *channel.Channel, opts ...Option) *Requester {
	r := &Requester{
		req:     req,
		resp:    resp,
		framing: protocol.FramingEnvelope,
		codec:   codec.JSON(),
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Request sends body as a request of the given kind and waits for its
// response.
//
// Errors:
//   - *TimeoutError when nothing matching arrives within the timeout
//   - *protocol.ParseError when the response file cannot be decoded
//   - *WorkerError when the worker answered with an error
//   - ErrSuperseded when a newer Request on r took over
//   - *channel.IOError when a channel file cannot be written or read
func (r *Requester) Request(ctx context.Context, kind, body string) (*Response, error) {
	seq := r.seq.Add(1)
	id := r.newID()
	env := protocol.NewRequest(id, seq, kind, body)

	data, err := protocol.Encode(r.framing, r.codec, env)
	if err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	r.supersede(id, cancel)
	defer r.release(id)

	// Write and baseline together: a concurrent request must not slip its
	// write in between, or its content would become our "change".
	r.writeMu.Lock()
	if err := r.req.Write(data); err != nil {
		r.writeMu.Unlock()
		return nil, fmt.Errorf("send %s request to %s: %w", kind, r.req.Path(), err)
	}
	baseline, err := r.resp.Snapshot()
	r.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("baseline %s response channel %s: %w", kind, r.resp.Path(), err)
	}

	r.logger.Debug("request sent",
		zap.String("kind", kind),
		zap.String("id", id),
		zap.Uint64("seq", seq),
		zap.String("path", r.req.Path()),
	)

	// A fast worker may have answered between our write and the snapshot
	if r.framing == protocol.FramingEnvelope && baseline.Exists {
		if resp, done, err := r.match(baseline.Content, env, false); done {
			return resp, err
		}
	}

	start := time.Now()
	for {
		snap, err := r.resp.PollForChange(waitCtx, baseline, r.remaining(start))
		if err != nil {
			return nil, r.waitError(ctx, waitCtx, err, env)
		}
		baseline = snap

		if r.framing == protocol.FramingRaw {
			return &Response{ID: id, Seq: seq, Kind: kind, Body: string(snap.Content)}, nil
		}

		if resp, done, err := r.match(snap.Content, env, true); done {
			if err == nil {
				r.logger.Debug("response received",
					zap.String("kind", kind),
					zap.String("id", id),
					zap.Duration("elapsed", time.Since(start)),
				)
			}
			return resp, err
		}
	}
}

// match decodes content and reports whether it settles the request sent
// as sent. Undecodable content settles it with a ParseError only when
// strict; the baseline may legitimately hold anything.
func (r *Requester) match(content []byte, sent *protocol.Envelope, strict bool) (*Response, bool, error) {
	got, err := protocol.Decode(r.framing, r.codec, content)
	if err != nil {
		if !strict {
			return nil, false, nil
		}
		return nil, true, fmt.Errorf("read %s response from %s: %w", sent.Kind, r.resp.Path(), err)
	}
	if got.IsRequest() {
		// Our own request (shared file) or another requester's
		return nil, false, nil
	}
	if got.ID != sent.ID {
		if strict {
			r.logger.Warn("discarding response",
				zap.String("path", r.resp.Path()),
				zap.Error(&StaleResponseError{WantID: sent.ID, WantSeq: sent.Seq, GotID: got.ID, GotSeq: got.Seq}),
			)
		}
		return nil, false, nil
	}
	if got.Status == protocol.StatusError {
		return nil, true, &WorkerError{Kind: sent.Kind, ID: sent.ID, Message: got.Error}
	}
	return &Response{ID: got.ID, Seq: got.Seq, Kind: got.Kind, Body: got.Body}, true, nil
}

// remaining returns the unused part of the timeout budget.
// A non-positive result still gets a minimal budget so the error path goes
// through PollForChange's timeout reporting.
func (r *Requester) remaining(start time.Time) time.Duration {
	left := r.timeout - time.Since(start)
	if left <= 0 {
		return time.Nanosecond
	}
	return left
}

func (r *Requester) waitError(parent, waitCtx context.Context, err error, env *protocol.Envelope) error {
	if errors.Is(err, channel.ErrTimedOut) {
		return &TimeoutError{
			Kind:         env.Kind,
			ID:           env.ID,
			RequestPath:  r.req.Path(),
			ResponsePath: r.resp.Path(),
			After:        r.timeout,
		}
	}
	if parent.Err() == nil && errors.Is(context.Cause(waitCtx), ErrSuperseded) {
		return ErrSuperseded
	}
	if parent.Err() != nil {
		return parent.Err()
	}
	return fmt.Errorf("wait for %s response on %s: %w", env.Kind, r.resp.Path(), err)
}

// supersede cancels the outstanding wait, if any, and installs id as the
// current one.
func (r *Requester) supersede(id string, cancel context.CancelCauseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancelWait != nil {
		r.logger.Debug("superseding request", zap.String("old", r.activeID), zap.String("new", id))
		r.cancelWait(ErrSuperseded)
	}
	r.activeID = id
	r.cancelWait = cancel
}

// release clears id if it is still the outstanding request.
func (r *Requester) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeID == id {
		r.activeID = ""
		r.cancelWait = nil
	}
}
