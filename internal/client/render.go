package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/gomoku/internal/game"
)

var (
	gridStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	stoneOne    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	stoneTwo    = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	winnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

// RenderBoard draws the board with row-start cell indices down the left
// edge, so "move 47" is easy to aim.
func RenderBoard(b *game.Board, winner string) string {
	var sb strings.Builder

	cols := b.Cols()
	for rowStart := 0; rowStart < b.Len(); rowStart += cols {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("%4d ", rowStart)))
		for i := rowStart; i < rowStart+cols; i++ {
			switch b.Get(i) {
			case 1:
				sb.WriteString(stoneOne.Render("x "))
			case 2:
				sb.WriteString(stoneTwo.Render("o "))
			default:
				sb.WriteString(gridStyle.Render(". "))
			}
		}
		sb.WriteString("\n")
	}

	if winner != "" {
		sb.WriteString(winnerStyle.Render(fmt.Sprintf("%s wins!", winner)))
		sb.WriteString("\n")
	}

	return sb.String()
}
