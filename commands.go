package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/billie-coop/minefile/internal/board"
	"github.com/billie-coop/minefile/internal/tui"
)

type command func(ctx context.Context, c *cli, args []string) error

var commands = map[string]command{
	"board":  boardCmd,
	"count":  countCmd,
	"write":  writeCmd,
	"edit":   editCmd,
	"list":   listCmd,
	"show":   showCmd,
	"delete": deleteCmd,
}

func boardCmd(ctx context.Context, c *cli, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: minefile board WIDTH HEIGHT BOMBS")
	}
	req, err := board.ParseRequest(strings.Join(args, " "))
	if err != nil {
		return err
	}
	client, err := c.app.Client(c.client)
	if err != nil {
		return err
	}

	var b board.Board
	err = c.wait(ctx, "generating board", func(ctx context.Context) error {
		var err error
		b, err = client.Board(ctx, req)
		return err
	})
	if err != nil {
		return err
	}
	lipgloss.Fprintln(c.stdout, tui.RenderBoard(c.theme, b))
	return nil
}

func countCmd(ctx context.Context, c *cli, _ []string) error {
	text, err := io.ReadAll(c.stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	n, err := c.count(ctx, string(text))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, n)
	return nil
}

func (c *cli) count(ctx context.Context, text string) (int, error) {
	client, err := c.app.Client(c.client)
	if err != nil {
		return 0, err
	}
	var n int
	err = c.wait(ctx, "counting words", func(ctx context.Context) error {
		var err error
		n, err = client.WordCount(ctx, text)
		return err
	})
	return n, err
}

// writeCmd saves stdin as an entry first, so a missing worker never loses
// what was written.
func writeCmd(ctx context.Context, c *cli, _ []string) error {
	if tui.IsTerminal(c.stdin) {
		lipgloss.Fprintln(c.stderr, c.theme.Muted.Render("Write your entry. Ctrl+D on a new line to finish."))
	}
	text, err := io.ReadAll(c.stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(text)) == "" {
		return errors.New("empty entry, nothing saved")
	}

	entry, err := c.app.Journal.Create(string(text), time.Now())
	if err != nil {
		return err
	}
	c.app.Logger.Info("entry saved", zap.String("id", entry.ID))

	n, err := c.count(ctx, entry.Content)
	if err != nil {
		lipgloss.Fprintln(c.stdout, c.theme.OK("saved "+entry.ID))
		lipgloss.Fprintln(c.stderr, c.theme.Warn("word count unavailable: "+err.Error()))
		return nil
	}
	if err := c.app.Journal.SetWords(entry.ID, n); err != nil {
		return err
	}
	lipgloss.Fprintln(c.stdout, c.theme.OK(fmt.Sprintf("saved %s (%d words)", entry.ID, n)))
	return nil
}

// editCmd replaces an entry's content from stdin and re-counts its words.
func editCmd(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: minefile edit ID")
	}
	id := args[0]
	if _, err := c.app.Journal.Get(id); err != nil {
		return err
	}

	if tui.IsTerminal(c.stdin) {
		lipgloss.Fprintln(c.stderr, c.theme.Muted.Render("Write the new text for "+id+". Ctrl+D on a new line to finish."))
	}
	text, err := io.ReadAll(c.stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(text)) == "" {
		return errors.New("empty entry, nothing changed")
	}

	entry, err := c.app.Journal.Update(id, string(text))
	if err != nil {
		return err
	}
	c.app.Logger.Info("entry updated", zap.String("id", entry.ID))

	n, err := c.count(ctx, entry.Content)
	if err != nil {
		lipgloss.Fprintln(c.stdout, c.theme.OK("updated "+entry.ID))
		lipgloss.Fprintln(c.stderr, c.theme.Warn("word count unavailable: "+err.Error()))
		return nil
	}
	if err := c.app.Journal.SetWords(entry.ID, n); err != nil {
		return err
	}
	lipgloss.Fprintln(c.stdout, c.theme.OK(fmt.Sprintf("updated %s (%d words)", entry.ID, n)))
	return nil
}

func listCmd(_ context.Context, c *cli, _ []string) error {
	entries, err := c.app.Journal.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		lipgloss.Fprintln(c.stdout, c.theme.Muted.Render("No entries yet. Try: minefile write"))
		return nil
	}
	for _, e := range entries {
		words := ""
		if e.Words != nil {
			words = fmt.Sprintf(" (%d words)", *e.Words)
		}
		lipgloss.Fprintln(c.stdout, c.theme.Primary.Render(e.ID)+"  "+e.Title()+c.theme.Muted.Render(words))
	}
	return nil
}

func showCmd(_ context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: minefile show ID")
	}
	e, err := c.app.Journal.Get(args[0])
	if err != nil {
		return err
	}
	lipgloss.Fprintln(c.stdout, c.theme.Primary.Render(e.ID)+"  "+c.theme.Muted.Render(e.Created.Format(time.RFC1123)))
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, strings.TrimRight(e.Content, "\n"))
	if e.Words != nil {
		fmt.Fprintln(c.stdout)
		lipgloss.Fprintln(c.stdout, c.theme.Muted.Render(fmt.Sprintf("%d words", *e.Words)))
	}
	return nil
}

func deleteCmd(_ context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: minefile delete ID")
	}
	if err := c.app.Journal.Delete(args[0]); err != nil {
		return err
	}
	lipgloss.Fprintln(c.stdout, c.theme.OK("deleted "+args[0]))
	return nil
}
