package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/voyagehq/journeyd/internal/domain"
	"github.com/voyagehq/journeyd/internal/projector"
)

// Store loads journey data for the dashboard
type Store interface {
	GetJourney(ctx context.Context, id string) (domain.Journey, error)
	ListJourneys(ctx context.Context) ([]domain.Summary, error)
}

// Model is the TUI application model
type Model struct {
	store Store

	// Data
	summaries []domain.Summary
	journeyID string
	items     []projector.DisplayItem
	loadErr   error

	// UI state
	width       int
	height      int
	activeTab   int
	selectedRow int
	logScroll   int

	// Refresh
	lastRefresh time.Time
}

// ModelConfig holds initial data for the TUI model
type ModelConfig struct {
	Store     Store
	JourneyID string
}

// NewModel creates a new TUI model
func NewModel(cfg ModelConfig) Model {
	return Model{
		store:     cfg.Store,
		journeyID: cfg.JourneyID,
		activeTab: 0,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refreshCmd(),
		tickCmd(),
	)
}

// TickMsg triggers a refresh
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// RefreshMsg carries freshly loaded journey data
type RefreshMsg struct {
	Summaries []domain.Summary
	Items     []projector.DisplayItem
	Err       error
}

func (m Model) refreshCmd() tea.Cmd {
	store := m.store
	journeyID := m.journeyID
	return func() tea.Msg {
		if store == nil {
			return RefreshMsg{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		summaries, err := store.ListJourneys(ctx)
		if err != nil {
			return RefreshMsg{Err: err}
		}

		var items []projector.DisplayItem
		if journeyID != "" {
			j, err := store.GetJourney(ctx, journeyID)
			if err != nil {
				return RefreshMsg{Summaries: summaries, Err: err}
			}
			items = projector.Project(j.Log)
		}

		return RefreshMsg{Summaries: summaries, Items: items}
	}
}
