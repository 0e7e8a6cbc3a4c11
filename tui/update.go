package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		case "j", "down":
			if m.activeTab == 0 {
				if m.selectedRow < len(m.summaries)-1 {
					m.selectedRow++
				}
			} else {
				if m.logScroll < len(m.items)-1 {
					m.logScroll++
				}
			}
		case "k", "up":
			if m.activeTab == 0 {
				if m.selectedRow > 0 {
					m.selectedRow--
				}
			} else if m.logScroll > 0 {
				m.logScroll--
			}
		case "tab":
			m.activeTab = (m.activeTab + 1) % 2
			m.logScroll = 0
		case "enter":
			// Open the selected journey's log
			if m.activeTab == 0 && m.selectedRow < len(m.summaries) {
				m.journeyID = m.summaries[m.selectedRow].ID
				m.activeTab = 1
				m.logScroll = 0
				return m, m.refreshCmd()
			}
		}

	case TickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())

	case RefreshMsg:
		m.summaries = msg.Summaries
		if msg.Items != nil {
			m.items = msg.Items
		}
		m.loadErr = msg.Err
		m.lastRefresh = time.Now()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}
