package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/voyagehq/journeyd/internal/domain"
	"github.com/voyagehq/journeyd/internal/projector"
)

type fakeStore struct {
	journeys map[string]domain.Journey
}

func (s *fakeStore) GetJourney(_ context.Context, id string) (domain.Journey, error) {
	j, ok := s.journeys[id]
	if !ok {
		return domain.Journey{}, domain.NotFound("journey", id)
	}
	return j, nil
}

func (s *fakeStore) ListJourneys(context.Context) ([]domain.Summary, error) {
	var out []domain.Summary
	for _, j := range s.journeys {
		out = append(out, j.Summarize())
	}
	return out, nil
}

func demoJourney() domain.Journey {
	return domain.Journey{
		ID:    "j1",
		Title: "Launch plan",
		Log: []domain.LogEntry{
			{ID: "e1", Type: domain.EntryJourneyStart, Text: "Launch plan"},
			{ID: "e2", Type: domain.EntryPhaseHeader, Phase: &domain.PhaseSnapshot{ID: "p1", Name: "Research"}},
			{ID: "e3", Type: domain.EntryTaskDefinition, Task: &domain.TaskSnapshot{ID: "t1", Name: "Survey market", Completed: true}},
			{ID: "e4", Type: domain.EntryUserRequest, Text: "how is it going?"},
		},
	}
}

func TestNewModel(t *testing.T) {
	m := NewModel(ModelConfig{JourneyID: "j1"})

	if m.activeTab != 0 {
		t.Errorf("activeTab = %d, want 0", m.activeTab)
	}
	if m.journeyID != "j1" {
		t.Errorf("journeyID = %q", m.journeyID)
	}
}

func TestModel_RefreshMsg(t *testing.T) {
	j := demoJourney()
	m := NewModel(ModelConfig{JourneyID: "j1"})

	updated, _ := m.Update(RefreshMsg{
		Summaries: []domain.Summary{j.Summarize()},
		Items:     projector.Project(j.Log),
	})
	m = updated.(Model)

	if len(m.summaries) != 1 {
		t.Errorf("summaries = %d, want 1", len(m.summaries))
	}
	if len(m.items) != 3 {
		t.Errorf("items = %d, want 3", len(m.items))
	}
}

func TestModel_TabSwitching(t *testing.T) {
	m := NewModel(ModelConfig{})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.activeTab != 1 {
		t.Errorf("activeTab = %d, want 1", m.activeTab)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.activeTab != 0 {
		t.Errorf("activeTab = %d, want 0", m.activeTab)
	}
}

func TestModel_EnterOpensJourney(t *testing.T) {
	j := demoJourney()
	m := NewModel(ModelConfig{Store: &fakeStore{journeys: map[string]domain.Journey{"j1": j}}})

	updated, _ := m.Update(RefreshMsg{Summaries: []domain.Summary{j.Summarize()}})
	m = updated.(Model)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.journeyID != "j1" {
		t.Errorf("journeyID = %q, want j1", m.journeyID)
	}
	if m.activeTab != 1 {
		t.Errorf("activeTab = %d, want 1 (log tab)", m.activeTab)
	}
	if cmd == nil {
		t.Error("enter should schedule a refresh")
	}
}

func TestView_RendersLog(t *testing.T) {
	j := demoJourney()
	m := NewModel(ModelConfig{JourneyID: "j1"})
	m.height = 40
	m.activeTab = 1

	updated, _ := m.Update(RefreshMsg{Items: projector.Project(j.Log)})
	m = updated.(Model)

	out := m.View()
	if !strings.Contains(out, "Research") {
		t.Error("view missing phase name")
	}
	if !strings.Contains(out, "[x] Survey market") {
		t.Error("view missing completed task checkbox")
	}
	if !strings.Contains(out, "how is it going?") {
		t.Error("view missing chat turn")
	}
}

func TestView_EmptyStates(t *testing.T) {
	m := NewModel(ModelConfig{})
	out := m.View()
	if !strings.Contains(out, "No journeys yet") {
		t.Error("missing empty journeys message")
	}

	m.activeTab = 1
	out = m.View()
	if !strings.Contains(out, "No log entries") {
		t.Error("missing empty log message")
	}
}
