package channel

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"time"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = time.Second

// Snapshot is what one side last saw in the file.
// Content is authoritative for change detection; ModTime is kept for logs.
type Snapshot struct {
	Exists  bool
	Content []byte
	ModTime time.Time
}

// Differs reports whether s carries different content than other.
// Existence counts: an empty file differs from a missing one.
func (s Snapshot) Differs(other Snapshot) bool {
	if s.Exists != other.Exists {
		return true
	}
	return !bytes.Equal(s.Content, other.Content)
}

// Channel is one shared file.
// It holds no snapshot state itself; callers keep their own baseline, so the
// same Channel value can be shared by goroutines.
type Channel struct {
	path     string
	interval time.Duration
	notify   <-chan struct{}
}

// Option configures a Channel.
type Option func(*Channel)

// WithPollInterval sets how long WaitForChange sleeps between looks.
func WithPollInterval(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithNotify installs an early wake-up signal (see package watcher).
// A pulse only shortens the current sleep; polling still decides.
func WithNotify(ch <-chan struct{}) Option {
	return func(c *Channel) {
		c.notify = ch
	}
}

// New creates a channel over path. The file need not exist yet.
func New(path string, opts ...Option) *Channel {
	c := &Channel{
		path:     path,
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the file this channel uses.
func (c *Channel) Path() string { return c.path }

// PollInterval returns the configured sleep between looks.
func (c *Channel) PollInterval() time.Duration { return c.interval }

// Write atomically replaces the file content with data.
func (c *Channel) Write(data []byte) error {
	if err := WriteFileAtomic(c.path, data, 0o644); err != nil {
		return &IOError{Path: c.path, Op: "write", Err: err}
	}
	return nil
}

// Read returns the full current content.
func (c *Channel) Read() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, &IOError{Path: c.path, Op: "read", Err: err}
	}
	return data, nil
}

// Snapshot captures the current content and mtime.
// A missing file yields Exists=false and no error.
func (c *Channel) Snapshot() (Snapshot, error) {
	info, err := os.Stat(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, &IOError{Path: c.path, Op: "stat", Err: err}
	}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		// Removed between stat and read
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, &IOError{Path: c.path, Op: "read", Err: err}
	}
	return Snapshot{Exists: true, Content: data, ModTime: info.ModTime()}, nil
}

// WaitForChange blocks until the content differs from baseline or ctx ends.
// It sleeps first, so a change already present is reported after at most
// one interval.
func (c *Channel) WaitForChange(ctx context.Context, baseline Snapshot) (Snapshot, error) {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-timer.C:
			timer.Reset(c.interval)
		case <-c.notify:
			// Early look; the timer keeps its own schedule
		}

		snap, err := c.Snapshot()
		if err != nil {
			return Snapshot{}, err
		}
		if snap.Differs(baseline) {
			return snap, nil
		}
	}
}

// PollForChange is WaitForChange bounded by timeout.
// It returns a *TimeoutError when the budget runs out, and ctx.Err() when
// the caller's own context ends first.
func (c *Channel) PollForChange(ctx context.Context, baseline Snapshot, timeout time.Duration) (Snapshot, error) {
	if timeout <= 0 {
		return c.WaitForChange(ctx, baseline)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	snap, err := c.WaitForChange(waitCtx, baseline)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return Snapshot{}, &TimeoutError{Path: c.path, After: timeout}
	}
	return snap, err
}
