package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mkstore/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	writeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	removeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	renameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mkstore watch"))
	b.WriteString("\n")
	if m.closed {
		b.WriteString(dimStyle.Render("watcher stopped"))
	} else {
		b.WriteString(fmt.Sprintf("%s watching %d path(s)", m.spinner.View(), len(m.paths)))
	}
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("no changes yet"))
		b.WriteString("\n")
	} else {
		start := m.scrollOffset
		end := start + m.visibleLines()
		if end > len(m.entries) {
			end = len(m.entries)
		}
		for _, e := range m.entries[start:end] {
			b.WriteString(renderEntry(e))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("j/k scroll · c clear · q quit"))
	return b.String()
}

func renderEntry(e logEntry) string {
	var style lipgloss.Style
	switch e.event.Type {
	case store.ChangeWrite:
		style = writeStyle
	case store.ChangeRemove:
		style = removeStyle
	case store.ChangeRename:
		style = renameStyle
	default:
		style = normalStyle
	}
	return fmt.Sprintf("%s %s %s",
		dimStyle.Render(e.at.Format("15:04:05")),
		style.Render(fmt.Sprintf("%-6s", e.event.Type)),
		normalStyle.Render(e.event.Path))
}
