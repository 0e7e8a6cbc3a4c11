package mutator

import (
	"strings"
	"testing"
	"time"

	"github.com/voyagehq/journeyd/internal/domain"
)

func seedJourney() domain.Journey {
	now := time.Now()
	return domain.Journey{
		ID:        "j1",
		Title:     "Launch",
		CreatedAt: now,
		UpdatedAt: now,
		Log: []domain.LogEntry{
			{ID: "e1", JourneyID: "j1", Type: domain.EntryJourneyStart, Text: "Launch", Timestamp: now},
			{ID: "e2", JourneyID: "j1", Type: domain.EntryPhaseHeader, Timestamp: now,
				Phase: &domain.PhaseSnapshot{ID: "p1", Name: "Research"}},
			{ID: "e3", JourneyID: "j1", Type: domain.EntryTaskDefinition, CurrentPlan: true, Timestamp: now,
				Task: &domain.TaskSnapshot{ID: "t1", Name: "Survey market"}},
			{ID: "e4", JourneyID: "j1", Type: domain.EntryTaskDefinition, CurrentPlan: true, Timestamp: now,
				Task: &domain.TaskSnapshot{ID: "t2", Name: "Budget review", Decisions: []domain.Decision{
					{ID: "d1", Text: "Approve budget"},
				}}},
		},
	}
}

func lastOfType(log []domain.LogEntry, t domain.EntryType) *domain.LogEntry {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Type == t {
			return &log[i]
		}
	}
	return nil
}

func TestToggleComplete(t *testing.T) {
	j := seedJourney()

	res, err := Apply(j, ToggleComplete{Journey: "j1", TaskID: "t1", Completed: true})
	if err != nil {
		t.Fatal(err)
	}

	got := res.Journey.CurrentTask("t1")
	if got == nil || !got.Completed {
		t.Fatalf("latest snapshot for t1 = %+v, want completed", got)
	}

	msg := lastOfType(res.Journey.Log, domain.EntrySystemMessage)
	if msg == nil || !strings.Contains(msg.Text, "Survey market") {
		t.Errorf("system message = %+v, want reference to task name", msg)
	}

	// The prior definition is flagged outdated, not removed.
	var prior *domain.LogEntry
	for i := range res.Journey.Log {
		if res.Journey.Log[i].ID == "e3" {
			prior = &res.Journey.Log[i]
		}
	}
	if prior == nil {
		t.Fatal("prior definition removed from log")
	}
	if !prior.Outdated {
		t.Error("prior definition not flagged outdated")
	}
	if prior.CurrentPlan {
		t.Error("prior definition still flagged as current plan")
	}

	if len(res.Appended) != 2 {
		t.Errorf("appended = %d entries, want 2", len(res.Appended))
	}
}

func TestToggleCompleteUnknownTask(t *testing.T) {
	j := seedJourney()
	before := len(j.Log)

	_, err := Apply(j, ToggleComplete{Journey: "j1", TaskID: "ghost", Completed: true})
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if len(j.Log) != before {
		t.Error("failed mutation changed the input log")
	}
}

func TestEditTask(t *testing.T) {
	j := seedJourney()

	res, err := Apply(j, EditTask{Journey: "j1", TaskID: "t1", Name: "Survey competitors"})
	if err != nil {
		t.Fatal(err)
	}

	got := res.Journey.CurrentTask("t1")
	if got.Name != "Survey competitors" {
		t.Errorf("Name = %q", got.Name)
	}

	msg := lastOfType(res.Journey.Log, domain.EntrySystemMessage)
	if msg == nil || !strings.Contains(msg.Text, "Survey competitors") {
		t.Errorf("system message = %+v", msg)
	}
}

func TestEditTaskEmptyName(t *testing.T) {
	j := seedJourney()
	_, err := Apply(j, EditTask{Journey: "j1", TaskID: "t1", Name: "   "})
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestResolveDecision(t *testing.T) {
	j := seedJourney()

	res, err := Apply(j, ResolveDecision{Journey: "j1", TaskID: "t2", DecisionID: "d1", Approved: true})
	if err != nil {
		t.Fatal(err)
	}

	got := res.Journey.CurrentTask("t2")
	if len(got.Decisions) != 1 || !got.Decisions[0].Approved {
		t.Fatalf("decisions = %+v, want d1 approved", got.Decisions)
	}

	msg := lastOfType(res.Journey.Log, domain.EntrySystemMessage)
	if msg == nil || !strings.Contains(msg.Text, "Approve budget") || !strings.Contains(msg.Text, "approved") {
		t.Errorf("system message = %+v, want decision text and outcome", msg)
	}
}

func TestResolveDecisionUnknownDecision(t *testing.T) {
	j := seedJourney()
	before := len(j.Log)

	_, err := Apply(j, ResolveDecision{Journey: "j1", TaskID: "t2", DecisionID: "ghost", Approved: true})
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if len(j.Log) != before {
		t.Error("failed mutation appended entries")
	}
}

func TestAddTaskCreatesDefaultPhase(t *testing.T) {
	j := domain.Journey{ID: "j2", Title: "Empty", Log: []domain.LogEntry{
		{ID: "e1", JourneyID: "j2", Type: domain.EntryJourneyStart, Text: "Empty"},
	}}

	res, err := Apply(j, AddTask{Journey: "j2", Name: "Buy milk"})
	if err != nil {
		t.Fatal(err)
	}

	phases := res.Journey.CurrentPhases()
	if len(phases) != 1 {
		t.Fatalf("phases = %d, want exactly 1", len(phases))
	}
	if phases[0].Name != DefaultPhaseName {
		t.Errorf("phase name = %q", phases[0].Name)
	}

	def := lastOfType(res.Journey.Log, domain.EntryTaskDefinition)
	if def == nil || def.Task == nil || def.Task.Name != "Buy milk" {
		t.Fatalf("task definition = %+v", def)
	}
}

func TestAddTaskReusesExistingPhase(t *testing.T) {
	j := seedJourney()

	res, err := Apply(j, AddTask{Journey: "j1", Name: "Ship it"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Journey.CurrentPhases()) != 1 {
		t.Errorf("phases = %d, want 1 (no new phase)", len(res.Journey.CurrentPhases()))
	}
}

type staticMatcher struct{ id string }

func (m staticMatcher) Match(string) (string, bool) { return m.id, m.id != "" }

func TestAddTaskAssignsAgent(t *testing.T) {
	j := seedJourney()
	a := Applier{Matcher: staticMatcher{id: "agent-research"}}

	res, err := a.Apply(j, AddTask{Journey: "j1", Name: "Research vendors"})
	if err != nil {
		t.Fatal(err)
	}

	def := lastOfType(res.Journey.Log, domain.EntryTaskDefinition)
	if def.Task.AssignedAgentID != "agent-research" {
		t.Errorf("AssignedAgentID = %q", def.Task.AssignedAgentID)
	}
}

func TestPostMessageValidation(t *testing.T) {
	j := seedJourney()

	if _, err := Apply(j, PostMessage{Journey: "j1", Type: domain.EntryPhaseHeader, Text: "x"}); !domain.IsValidation(err) {
		t.Errorf("phase-header via PostMessage: err = %v, want ValidationError", err)
	}
	if _, err := Apply(j, PostMessage{Journey: "j1", Type: domain.EntryUserRequest, Text: "  "}); !domain.IsValidation(err) {
		t.Errorf("blank text: err = %v, want ValidationError", err)
	}

	res, err := Apply(j, PostMessage{Journey: "j1", Type: domain.EntryUserRequest, Text: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	last := res.Journey.Log[len(res.Journey.Log)-1]
	if last.Type != domain.EntryUserRequest || last.Text != "hello" {
		t.Errorf("last entry = %+v", last)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	j := seedJourney()
	before := j.Clone()

	if _, err := Apply(j, ToggleComplete{Journey: "j1", TaskID: "t1", Completed: true}); err != nil {
		t.Fatal(err)
	}

	if len(j.Log) != len(before.Log) {
		t.Fatal("input log length changed")
	}
	for i := range j.Log {
		if j.Log[i].Outdated != before.Log[i].Outdated {
			t.Errorf("entry %d outdated flag changed on input", i)
		}
	}
}
