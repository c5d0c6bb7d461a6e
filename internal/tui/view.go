package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mtaverne/corkboard/internal/board"
	"github.com/mtaverne/corkboard/internal/client"
)

// boardNote is an alias so the model file stays free of domain imports.
type boardNote = board.Note

func nextPaletteColor(c string) string {
	return board.NextColor(c)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	noteStyle = lipgloss.NewStyle().Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Border(lipgloss.NormalBorder(), false, false, false, true)

	footerStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().Italic(true).Padding(0, 1)

	statusStyles = map[client.SaveStatus]lipgloss.Style{
		client.StatusSaved:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		client.StatusSaving: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		client.StatusError:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}

	// Terminal approximations of the sticky-note palette.
	paletteStyles = map[string]lipgloss.Style{
		board.ColorYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		board.ColorPink:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		board.ColorBlue:   lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		board.ColorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		board.ColorOrange: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		board.ColorPurple: lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	}
)

// View renders the board list, the editor when active, and the status
// footer.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("corkboard"))
	b.WriteString("\n\n")

	if len(m.snapshot.Notes) == 0 {
		b.WriteString(noteStyle.Render("(empty board)"))
		b.WriteString("\n")
	}
	for i, n := range m.snapshot.Notes {
		b.WriteString(m.renderNote(i, n))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString("\n")
		b.WriteString(noteStyle.Render(m.input.View()))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderNote(i int, n board.Note) string {
	marker := paletteStyle(n.Color).Render("●")
	text := n.Text
	if n.Blank() {
		text = "(blank)"
	}
	line := fmt.Sprintf("%s %s", marker, text)
	if i == m.selected && !m.editing {
		return selectedStyle.Render(line)
	}
	return noteStyle.Render(line)
}

func (m Model) renderFooter() string {
	status := statusStyles[m.snapshot.Status].Render(string(m.snapshot.Status))

	addr := m.address.Current()
	if addr == "" {
		addr = "unshared"
	}

	help := "n new · e edit · c color · x delete · s share · q quit"
	return footerStyle.Render(fmt.Sprintf("%s · %s · %s", status, addr, help))
}

func paletteStyle(color string) lipgloss.Style {
	if s, ok := paletteStyles[color]; ok {
		return s
	}
	return paletteStyles[board.DefaultColor]
}
