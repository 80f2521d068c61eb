package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/minefile/internal/board"
)

// RenderBoard draws b as a framed grid with a caption.
func RenderBoard(t Theme, b board.Board) string {
	var sb strings.Builder
	for y := 0; y < b.Height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < b.Width; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			if b.At(x, y) {
				sb.WriteString(t.Bomb.Render(BombIcon))
			} else {
				sb.WriteString(t.Empty.Render(EmptyIcon))
			}
		}
	}

	caption := t.Muted.Render(fmt.Sprintf("%dx%d, %d bombs", b.Width, b.Height, b.Bombs()))
	return lipgloss.JoinVertical(lipgloss.Left, t.Frame.Render(sb.String()), caption)
}
