// Command minefiled is the worker daemon: it polls every configured
// request file and answers board and word-count requests.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/billie-coop/minefile/internal/app"
	"github.com/billie-coop/minefile/internal/config"
)

func main() {
	dir := flag.String("dir", config.DirName, "data directory")
	poll := flag.Duration("poll", 0, "request poll interval (0 = config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *dir, *poll); err != nil {
		fmt.Fprintf(os.Stderr, "minefiled: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dir string, poll time.Duration) error {
	a, err := app.Open(dir)
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.Daemon(poll)
	if err != nil {
		return err
	}

	cfg := a.Config.Get()
	a.Logger.Info("minefiled starting",
		zap.String("dir", a.Config.Dir()),
		zap.Int("channels", len(d.Workers)),
		zap.String("framing", cfg.Protocol.Framing),
		zap.String("codec", cfg.Protocol.Codec),
		zap.Bool("notify", cfg.Worker.Notify),
	)
	err = d.Run(ctx)
	a.Logger.Info("minefiled stopped")
	return err
}
