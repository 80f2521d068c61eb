package watcher

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a pulse is delivered.
const DefaultDebounce = 50 * time.Millisecond

// Debouncer coalesces a burst of Touch calls into one fire() once no new
// call has arrived for the delay. An atomic write shows up as create,
// write and rename events within microseconds; the worker should wake once.
type Debouncer struct {
	delay time.Duration
	fire  func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer returns a Debouncer calling fire after delay of quiet.
func NewDebouncer(delay time.Duration, fire func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fire: fire}
}

// Touch records activity on path and restarts the quiet period. Temp and
// editor files are ignored.
func (d *Debouncer) Touch(path string) {
	if shouldIgnore(path) {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.expire)
}

// Stop drops any pending fire. Later Touch calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) expire() {
	d.mu.Lock()
	d.timer = nil
	stopped := d.stopped
	d.mu.Unlock()

	if !stopped && d.fire != nil {
		d.fire()
	}
}

// shouldIgnore filters the hidden temp files WriteFileAtomic creates, plus
// editor swap files.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	switch filepath.Ext(base) {
	case ".tmp", ".swp", ".swo":
		return true
	}
	return false
}
