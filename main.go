// Package main is the entry point for the minefile requester CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/billie-coop/minefile/internal/app"
	"github.com/billie-coop/minefile/internal/channel"
	"github.com/billie-coop/minefile/internal/config"
	"github.com/billie-coop/minefile/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli is one invocation's environment.
type cli struct {
	app    *app.App
	client app.ClientOptions
	theme  tui.Theme

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("minefile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", config.DirName, "data directory")
	timeout := fs.Duration("timeout", 0, "give up waiting for the worker after this long (0 = config)")
	poll := fs.Duration("poll", 0, "response poll interval (0 = config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	c := &cli{
		client: app.ClientOptions{PollInterval: *poll, Timeout: *timeout},
		theme:  tui.DefaultTheme(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	rest := fs.Args()
	if len(rest) == 0 || rest[0] == "help" || rest[0] == "-h" {
		return c.exit(c.help())
	}

	a, err := app.Open(*dir)
	if err != nil {
		return c.exit(err)
	}
	defer a.Close()
	c.app = a

	if a.Config.Get().FirstTime {
		c.welcome()
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return c.exit(fmt.Errorf("unknown command %q (try minefile help)", rest[0]))
	}
	return c.exit(cmd(ctx, c, rest[1:]))
}

func (c *cli) exit(err error) int {
	if err == nil {
		return 0
	}
	lipgloss.Fprintln(c.stderr, c.theme.Fail(err.Error()))
	if errors.Is(err, channel.ErrTimedOut) {
		lipgloss.Fprintln(c.stderr, c.theme.Muted.Render("Is minefiled running against the same data directory?"))
	}
	return 1
}

func (c *cli) welcome() {
	lipgloss.Fprintln(c.stderr, c.theme.Primary.Render("Welcome to minefile!"))
	lipgloss.Fprintln(c.stderr, c.theme.Muted.Render(fmt.Sprintf(
		"Settings live in %s. Start minefiled, then try: minefile board 5 5 3",
		c.app.Config.Path())))
	if err := c.app.Config.CompleteFirstRun(); err != nil {
		lipgloss.Fprintln(c.stderr, c.theme.Warn(err.Error()))
	}
}

func (c *cli) help() error {
	out, err := tui.RenderHelp(c.stdout, 80)
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.stdout, out)
	return err
}

// wait runs fn behind a spinner on stderr.
func (c *cli) wait(ctx context.Context, label string, fn func(context.Context) error) error {
	start := time.Now()
	err := tui.Wait(ctx, c.stderr, label, fn)
	c.app.Logger.Debug("request finished", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	return err
}
