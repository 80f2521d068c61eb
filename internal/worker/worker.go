package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/billie-coop/minefile/internal/channel"
	"github.com/billie-coop/minefile/internal/csync"
	"github.com/billie-coop/minefile/internal/protocol"
	"github.com/billie-coop/minefile/internal/protocol/codec"
)

// DefaultServedCapacity is how many served request ids are remembered.
const DefaultServedCapacity = 256

// Handler computes the response body for a request body.
// Returning a *protocol.ParseError marks the request as malformed.
type Handler func(ctx context.Context, body string) (string, error)

// Worker serves one request/response channel pair.
type Worker struct {
	req      *channel.Channel
	resp     *channel.Channel
	sameFile bool
	framing  protocol.Framing
	codec    codec.Codec
	rawKind  string
	logger   *zap.Logger

	handlers *csync.Map[string, Handler]
	served   *csync.Recent[string]

	// Loop state, owned by the goroutine calling Tick
	lastSeen channel.Snapshot
}

// Option configures a Worker.
type Option func(*Worker)

// WithFraming selects envelope (default) or raw framing.
func WithFraming(f protocol.Framing) Option {
	return func(w *Worker) { w.framing = f }
}

// WithCodec selects the envelope codec (default JSON).
func WithCodec(c codec.Codec) Option {
	return func(w *Worker) { w.codec = c }
}

// WithRawKind names the handler used under raw framing, where the request
// itself carries no kind.
func WithRawKind(kind string) Option {
	return func(w *Worker) { w.rawKind = kind }
}

// WithServedCapacity bounds the served-id memory.
func WithServedCapacity(n int) Option {
	return func(w *Worker) { w.served = csync.NewRecent[string](n) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a worker reading req and answering on resp.
// req and resp may refer to the same file.
func New(req, resp *channel.Channel, opts ...Option) *Worker {
	w := &Worker{
		req:      req,
		resp:     resp,
		sameFile: samePath(req.Path(), resp.Path()),
		framing:  protocol.FramingEnvelope,
		codec:    codec.JSON(),
		logger:   zap.NewNop(),
		handlers: csync.NewMap[string, Handler](),
		served:   csync.NewRecent[string](DefaultServedCapacity),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(zap.String("request_path", req.Path()))
	return w
}

// Handle registers h for requests of the given kind. It may be called while
// the worker runs.
func (w *Worker) Handle(kind string, h Handler) {
	w.handlers.Set(kind, h)
}

// Kinds lists the registered kinds.
func (w *Worker) Kinds() []string {
	return csync.SortedKeys(w.handlers)
}

// Served reports whether the request id was answered recently.
func (w *Worker) Served(id string) bool {
	return w.served.Has(id)
}

// Run polls until ctx is done. It returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	w.Prime()

	w.logger.Info("worker started",
		zap.Strings("kinds", w.Kinds()),
		zap.String("response_path", w.resp.Path()),
		zap.Duration("interval", w.req.PollInterval()),
		zap.String("framing", string(w.framing)),
	)

	for {
		w.Tick(ctx)

		if _, err := w.req.WaitForChange(ctx, w.lastSeen); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.logger.Info("worker stopped")
				return nil
			}
			// Stat/read failures are transient (permissions, NFS); keep going
			w.logger.Warn("poll failed", zap.Error(err))
			select {
			case <-ctx.Done():
				w.logger.Info("worker stopped")
				return nil
			case <-time.After(w.req.PollInterval()):
			}
		}
	}
}

// Prime marks the request answered by the current response file as served.
func (w *Worker) Prime() {
	if w.framing != protocol.FramingEnvelope {
		return
	}
	snap, err := w.resp.Snapshot()
	if err != nil || !snap.Exists {
		return
	}
	env, err := protocol.Decode(w.framing, w.codec, snap.Content)
	if err != nil || !env.IsResponse() {
		return
	}
	w.served.Add(env.ID)
	w.logger.Debug("primed served id from response file", zap.String("id", env.ID))
}

// Tick performs one poll: if the request file changed since the last tick,
// the new request is served. It never returns an error; everything is
// logged.
func (w *Worker) Tick(ctx context.Context) {
	snap, err := w.req.Snapshot()
	if err != nil {
		w.logger.Warn("read request channel", zap.Error(err))
		return
	}
	if !snap.Exists || !snap.Differs(w.lastSeen) {
		return
	}
	w.lastSeen = snap

	if len(bytes.TrimSpace(snap.Content)) == 0 {
		return
	}

	env, err := protocol.Decode(w.framing, w.codec, snap.Content)
	if err != nil {
		w.logger.Warn("skipping malformed request", zap.Error(err))
		return
	}
	if w.framing == protocol.FramingRaw {
		env.Kind = w.rawKind
	} else {
		if env.IsResponse() {
			// Our own answer when both directions share a file
			return
		}
		if w.served.Has(env.ID) {
			w.logger.Debug("skipping duplicate request", zap.String("id", env.ID))
			return
		}
	}

	w.serve(ctx, env, snap.Content)
}

// serve answers env. request is the file content env was decoded from.
func (w *Worker) serve(ctx context.Context, env *protocol.Envelope, request []byte) {
	log := w.logger.With(zap.String("kind", env.Kind), zap.String("id", env.ID), zap.Uint64("seq", env.Seq))
	start := time.Now()

	var reply *protocol.Envelope
	h, ok := w.handlers.Get(env.Kind)
	if !ok {
		log.Warn("unknown request kind")
		if w.framing == protocol.FramingRaw {
			return
		}
		reply = env.Fail(fmt.Errorf("no handler for kind %q", env.Kind))
	} else {
		body, err := h(ctx, env.Body)
		if err != nil {
			var perr *protocol.ParseError
			if errors.As(err, &perr) {
				log.Warn("malformed request body", zap.Error(err))
			} else {
				log.Warn("request failed", zap.Error(err))
			}
			if w.framing == protocol.FramingRaw {
				// Nowhere to put an error without an envelope
				return
			}
			reply = env.Fail(err)
		} else {
			reply = env.Reply(body)
		}
	}

	data, err := protocol.Encode(w.framing, w.codec, reply)
	if err != nil {
		log.Error("encode response", zap.Error(err))
		return
	}
	if w.sameFile && w.replaced(request) {
		// A newer request landed while we computed; answering now would
		// overwrite it. Leave lastSeen so the next tick serves it.
		log.Info("request replaced before reply, dropping response")
		return
	}
	if err := w.resp.Write(data); err != nil {
		log.Error("write response", zap.Error(err))
		return
	}

	if w.framing == protocol.FramingEnvelope {
		w.served.Add(env.ID)
	}
	if w.sameFile {
		// Do not mistake our own answer for the next request
		w.lastSeen = channel.Snapshot{Exists: true, Content: data}
	}

	log.Info("request served",
		zap.String("status", string(reply.Status)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// replaced reports whether the shared file no longer holds request.
func (w *Worker) replaced(request []byte) bool {
	snap, err := w.req.Snapshot()
	if err != nil {
		// Unreadable now; the write below will surface the problem
		return false
	}
	return !bytes.Equal(snap.Content, request)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
