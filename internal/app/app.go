// Package app wires configuration, logging and the file channels into the
// two processes: the minefile CLI (requester side) and the minefiled
// daemon (worker side).
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/billie-coop/minefile/internal/channel"
	"github.com/billie-coop/minefile/internal/config"
	"github.com/billie-coop/minefile/internal/journal"
	"github.com/billie-coop/minefile/internal/observability"
	"github.com/billie-coop/minefile/internal/protocol"
	"github.com/billie-coop/minefile/internal/protocol/codec"
	"github.com/billie-coop/minefile/internal/requester"
	"github.com/billie-coop/minefile/internal/service"
	"github.com/billie-coop/minefile/internal/watcher"
	"github.com/billie-coop/minefile/internal/worker"
)

// App holds the loaded configuration and the services built from it.
type App struct {
	Config  *config.Manager
	Logger  *zap.Logger
	Journal *journal.Store
	Codecs  *codec.Registry
}

// Open loads the data directory dir and builds the logger it configures.
func Open(dir string) (*App, error) {
	m := config.NewManager(dir)
	if err := m.Load(); err != nil {
		return nil, err
	}
	logger, err := observability.SetupLogger(m.Get().Log, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return New(m, logger), nil
}

// New builds an App from an already loaded config.
func New(m *config.Manager, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := m.Get()
	return &App{
		Config:  m,
		Logger:  logger,
		Journal: journal.NewStore(m.Resolve(cfg.Journal.Directory), cfg.Journal.FilenameFormat, cfg.Journal.Extension),
		Codecs:  codec.NewRegistry(),
	}
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Logger.Sync()
}

func (a *App) wire() (protocol.Framing, codec.Codec, error) {
	cfg := a.Config.Get()
	framing, err := protocol.ParseFraming(cfg.Protocol.Framing)
	if err != nil {
		return "", nil, err
	}
	c, err := a.Codecs.Get(cfg.Protocol.Codec)
	if err != nil {
		return "", nil, err
	}
	return framing, c, nil
}

// ClientOptions override the configured requester settings when non-zero.
type ClientOptions struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

// Client builds a requester for every configured kind.
func (a *App) Client(opts ClientOptions) (*service.Client, error) {
	cfg := a.Config.Get()
	framing, c, err := a.wire()
	if err != nil {
		return nil, err
	}

	poll := cfg.Requester.PollInterval
	if opts.PollInterval > 0 {
		poll = opts.PollInterval
	}
	timeout := cfg.Requester.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	build := func(kind string) *requester.Requester {
		ch, ok := cfg.Channel(kind)
		if !ok {
			return nil
		}
		return requester.New(
			channel.New(a.Config.Resolve(ch.Request), channel.WithPollInterval(poll)),
			channel.New(a.Config.Resolve(ch.Response), channel.WithPollInterval(poll)),
			requester.WithFraming(framing),
			requester.WithCodec(c),
			requester.WithTimeout(timeout),
			requester.WithLogger(a.Logger.Named("requester").With(zap.String("kind", kind))),
		)
	}

	return &service.Client{
		Boards: build(service.KindBoard),
		Counts: build(service.KindWordCount),
	}, nil
}

// Daemon is the set of workers minefiled runs.
type Daemon struct {
	Workers   []*worker.Worker
	notifiers []*watcher.Notifier
	logger    *zap.Logger
}

// Daemon builds one worker per configured channel pair. pollOverride
// replaces the configured worker interval when non-zero.
func (a *App) Daemon(pollOverride time.Duration) (*Daemon, error) {
	cfg := a.Config.Get()
	framing, c, err := a.wire()
	if err != nil {
		return nil, err
	}
	if len(cfg.Channels) == 0 {
		return nil, errors.New("no channels configured")
	}

	poll := cfg.Worker.PollInterval
	if pollOverride > 0 {
		poll = pollOverride
	}

	d := &Daemon{logger: a.Logger}
	for _, ch := range cfg.Channels {
		reqPath := a.Config.Resolve(ch.Request)
		respPath := a.Config.Resolve(ch.Response)
		logger := a.Logger.Named("worker").With(zap.String("kind", ch.Kind))

		reqOpts := []channel.Option{channel.WithPollInterval(poll)}
		if cfg.Worker.Notify {
			if n := a.notify(reqPath, cfg.Worker.Debounce, logger); n != nil {
				d.notifiers = append(d.notifiers, n)
				reqOpts = append(reqOpts, channel.WithNotify(n.C()))
			}
		}

		w := worker.New(
			channel.New(reqPath, reqOpts...),
			channel.New(respPath, channel.WithPollInterval(poll)),
			worker.WithFraming(framing),
			worker.WithCodec(c),
			worker.WithRawKind(ch.Kind),
			worker.WithServedCapacity(cfg.Worker.ServedCapacity),
			worker.WithLogger(logger),
		)
		// One generator per worker; the board handler locks only its own
		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		if err := service.Register(w, rng, ch.Kind); err != nil {
			d.Close()
			return nil, fmt.Errorf("channel %s: %w", ch.Kind, err)
		}
		d.Workers = append(d.Workers, w)
	}
	return d, nil
}

// notify returns nil when watching is unavailable; polling still works.
func (a *App) notify(path string, debounce time.Duration, logger *zap.Logger) *watcher.Notifier {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("change notifications disabled", zap.Error(err))
		return nil
	}
	n, err := watcher.Notify(path, debounce, logger)
	if err != nil {
		logger.Warn("change notifications disabled", zap.Error(err))
		return nil
	}
	return n
}

// Run runs every worker until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.Close()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, w := range d.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Close stops change notifications.
func (d *Daemon) Close() {
	for _, n := range d.notifiers {
		if err := n.Close(); err != nil {
			d.logger.Debug("close watcher", zap.Error(err))
		}
	}
	d.notifiers = nil
}
