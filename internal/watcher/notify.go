package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Notifier pulses whenever one specific file is created, written or
// renamed into place.
type Notifier struct {
	target    string
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	pulses    chan struct{}
	logger    *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Notify starts watching path. The parent directory must exist; the file
// itself may not exist yet. Watching the directory (not the file) is what
// survives rename-based replacement.
func Notify(path string, debounce time.Duration, logger *zap.Logger) (*Notifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	n := &Notifier{
		target: target,
		fsw:    fsw,
		pulses: make(chan struct{}, 1),
		logger: logger,
		done:   make(chan struct{}),
	}
	n.debouncer = NewDebouncer(debounce, n.pulse)

	n.wg.Add(1)
	go n.run()
	return n, nil
}

// C delivers one pulse per settled burst of changes.
func (n *Notifier) C() <-chan struct{} { return n.pulses }

// Close stops watching. Safe to call more than once.
func (n *Notifier) Close() error {
	var err error
	n.closeOnce.Do(func() {
		close(n.done)
		n.debouncer.Stop()
		err = n.fsw.Close()
		n.wg.Wait()
	})
	return err
}

func (n *Notifier) run() {
	defer n.wg.Done()

	for {
		select {
		case <-n.done:
			return
		case event, ok := <-n.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != n.target {
				continue
			}
			n.debouncer.Touch(name)
		case err, ok := <-n.fsw.Errors:
			if !ok {
				return
			}
			n.logger.Warn("watch error", zap.String("path", n.target), zap.Error(err))
		}
	}
}

// pulse never blocks; an unread pulse already covers this change.
func (n *Notifier) pulse() {
	select {
	case n.pulses <- struct{}{}:
	default:
	}
}
