package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type doneMsg struct{ err error }

// waitModel shows a spinner until the wrapped call returns.
type waitModel struct {
	spinner spinner.Model
	label   string
	started time.Time
	run     tea.Cmd

	done bool
	err  error
}

func newWaitModel(label string, run tea.Cmd) waitModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return waitModel{
		spinner: s,
		label:   label,
		started: time.Now(),
		run:     run,
	}
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			m.err = context.Canceled
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m waitModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	elapsed := time.Since(m.started).Truncate(time.Second)
	return tea.NewView(fmt.Sprintf("%s %s %s\n", m.spinner.View(), m.label, elapsedStyle.Render(elapsed.String())))
}

var elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Wait runs fn, drawing a spinner labelled label on out while it polls.
// When out is not a terminal fn simply runs.
func Wait(ctx context.Context, out io.Writer, label string, fn func(context.Context) error) error {
	if !IsTerminal(out) {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newWaitModel(label, func() tea.Msg {
		return doneMsg{err: fn(ctx)}
	})
	p := tea.NewProgram(m,
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("spinner: %w", err)
	}
	if fm, ok := final.(waitModel); ok {
		return fm.err
	}
	return nil
}
