package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour/v2"
)

// HelpText is the CLI help in markdown.
const HelpText = `# minefile

Hands work to the **minefiled** worker through files in the data directory
and waits for the answer.

## Commands

| command | does |
|---------|------|
| ` + "`board W H N`" + ` | generate a W by H board with N bombs |
| ` + "`count`" + ` | count the words read from stdin |
| ` + "`write`" + ` | save stdin as a journal entry and count its words |
| ` + "`edit ID`" + ` | replace an entry with stdin and recount its words |
| ` + "`list`" + ` | list journal entries, newest first |
| ` + "`show ID`" + ` | print one entry |
| ` + "`delete ID`" + ` | remove one entry |
| ` + "`help`" + ` | this text |

## Flags

* ` + "`-dir`" + ` data directory (default ` + "`.minefile`" + `)
* ` + "`-timeout`" + ` give up waiting after this long
* ` + "`-poll`" + ` how often to re-read the response file

Start ` + "`minefiled`" + ` first. Without it every request times out.
`

// RenderHelp renders HelpText for out, styled when out is a terminal.
func RenderHelp(out io.Writer, width int) (string, error) {
	style := "notty"
	if IsTerminal(out) {
		style = "dark"
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("help renderer: %w", err)
	}
	return r.Render(HelpText)
}
