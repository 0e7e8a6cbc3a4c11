package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/voyagehq/journeyd/internal/domain"
	"github.com/voyagehq/journeyd/internal/projector"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	aiStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("255"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	supersededStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Strikethrough(true)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255"))

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Underline(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))
)

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("journeyd"))
	b.WriteString("  ")
	tabs := []string{"Journeys", "Log"}
	for i, name := range tabs {
		if i == m.activeTab {
			b.WriteString(tabActiveStyle.Render(name))
		} else {
			b.WriteString(tabInactiveStyle.Render(name))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	if m.loadErr != nil {
		b.WriteString(systemStyle.Render(fmt.Sprintf("load error: %v", m.loadErr)))
		b.WriteString("\n\n")
	}

	switch m.activeTab {
	case 0:
		b.WriteString(m.renderJourneys())
	case 1:
		b.WriteString(m.renderLog())
	}

	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render(" q quit · tab switch · enter open · j/k move · r refresh "))
	return b.String()
}

func (m Model) renderJourneys() string {
	if len(m.summaries) == 0 {
		return sectionStyle.Render("No journeys yet")
	}

	var rows []string
	for i, s := range m.summaries {
		row := fmt.Sprintf("%-30s  %d/%d tasks  %d phases", truncate(s.Title, 30), s.Completed, s.Tasks, s.Phases)
		if i == m.selectedRow {
			row = selectedStyle.Render("> " + row)
		} else {
			row = "  " + row
		}
		rows = append(rows, row)
	}
	return sectionStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderLog() string {
	if len(m.items) == 0 {
		return sectionStyle.Render("No log entries — select a journey and press enter")
	}

	visible := m.items
	if m.logScroll < len(visible) {
		visible = visible[m.logScroll:]
	}
	maxLines := m.height - 8
	if maxLines < 5 {
		maxLines = 5
	}

	var rows []string
	for _, item := range visible {
		rows = append(rows, renderItem(item))
		if len(rows) >= maxLines {
			break
		}
	}
	return sectionStyle.Render(strings.Join(rows, "\n"))
}

func renderItem(item projector.DisplayItem) string {
	if item.Kind == projector.KindPlaceholder {
		return systemStyle.Render("⚠ missing data")
	}
	if item.Superseded {
		return supersededStyle.Render(entryLine(item.Entry))
	}

	if item.Kind == projector.KindPhaseGroup {
		var b strings.Builder
		b.WriteString(phaseStyle.Render("▸ " + item.Entry.Phase.Name))
		for _, t := range item.Tasks {
			box := "[ ]"
			if t.Completed {
				box = "[x]"
			}
			line := fmt.Sprintf("  %s %s", box, t.Name)
			if t.AssignedAgentID != "" {
				line += systemStyle.Render(" @" + t.AssignedAgentID)
			}
			for _, d := range t.Decisions {
				mark := "?"
				if d.Approved {
					mark = "✓"
				}
				line += "\n" + systemStyle.Render(fmt.Sprintf("      %s %s", mark, d.Text))
			}
			b.WriteString("\n" + line)
		}
		return b.String()
	}

	return entryLine(item.Entry)
}

func entryLine(e domain.LogEntry) string {
	switch e.Type {
	case domain.EntryUserRequest:
		return userStyle.Render("you: " + e.Text)
	case domain.EntryAIResponse:
		return aiStyle.Render("ai:  " + e.Text)
	case domain.EntrySystemMessage:
		return systemStyle.Render("· " + e.Text)
	case domain.EntryJourneyStart:
		return phaseStyle.Render("journey: " + e.Text)
	case domain.EntryTaskDefinition:
		if e.Task != nil {
			return fmt.Sprintf("task: %s", e.Task.Name)
		}
		return systemStyle.Render("task: (missing)")
	case domain.EntryPhaseHeader:
		if e.Phase != nil {
			return phaseStyle.Render("▸ " + e.Phase.Name)
		}
		return systemStyle.Render("phase: (missing)")
	default:
		return e.Text
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
