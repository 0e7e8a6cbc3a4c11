// Package mutator applies structured commands to a journey log. Each
// command is a pure transform: given the same journey state it produces
// the same new entries (modulo id and timestamp generation), appending a
// system-message documenting the change plus an updated task-definition,
// and flagging the superseded definitions outdated.
package mutator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voyagehq/journeyd/internal/domain"
	"github.com/voyagehq/journeyd/internal/journal"
)

// AgentMatcher proposes an agent for a task by its text. Implementations
// must be deterministic for identical input.
type AgentMatcher interface {
	Match(taskText string) (agentID string, ok bool)
}

// DefaultPhaseName is used when AddTask runs against a journey with no phases
const DefaultPhaseName = "General"

// Result is the outcome of applying a command
type Result struct {
	Journey  domain.Journey
	Appended []domain.LogEntry
}

// Applier applies commands. The zero value works; Matcher is optional and
// only consulted by AddTask.
type Applier struct {
	Matcher AgentMatcher
}

// Apply is shorthand for Applier{}.Apply
func Apply(j domain.Journey, cmd Command) (Result, error) {
	return Applier{}.Apply(j, cmd)
}

// Apply computes the new journey state for cmd. The input journey is not
// modified; on error the returned Result is zero and the caller's state is
// untouched.
func (a Applier) Apply(j domain.Journey, cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case ToggleComplete:
		return a.toggleComplete(j, c)
	case EditTask:
		return a.editTask(j, c)
	case ResolveDecision:
		return a.resolveDecision(j, c)
	case AddTask:
		return a.addTask(j, c)
	case PostMessage:
		return a.postMessage(j, c)
	default:
		return Result{}, &domain.ValidationError{Field: "command", Reason: fmt.Sprintf("unknown command type %T", cmd)}
	}
}

func (a Applier) toggleComplete(j domain.Journey, c ToggleComplete) (Result, error) {
	task := j.CurrentTask(c.TaskID)
	if task == nil {
		return Result{}, domain.NotFound("task", c.TaskID)
	}

	task.Completed = c.Completed
	verb := "reopened"
	if c.Completed {
		verb = "marked complete"
	}
	msg := fmt.Sprintf("Task %q %s", task.Name, verb)

	return commit(j, c.TaskID, *task, msg)
}

func (a Applier) editTask(j domain.Journey, c EditTask) (Result, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return Result{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	task := j.CurrentTask(c.TaskID)
	if task == nil {
		return Result{}, domain.NotFound("task", c.TaskID)
	}

	old := task.Name
	task.Name = name
	msg := fmt.Sprintf("Task %q renamed to %q", old, name)

	return commit(j, c.TaskID, *task, msg)
}

func (a Applier) resolveDecision(j domain.Journey, c ResolveDecision) (Result, error) {
	task := j.CurrentTask(c.TaskID)
	if task == nil {
		return Result{}, domain.NotFound("task", c.TaskID)
	}

	found := false
	for i, d := range task.Decisions {
		if d.ID == c.DecisionID {
			task.Decisions[i].Approved = c.Approved
			found = true
			break
		}
	}
	if !found {
		return Result{}, domain.NotFound("decision", c.DecisionID)
	}

	outcome := "declined"
	if c.Approved {
		outcome = "approved"
	}
	var text string
	for _, d := range task.Decisions {
		if d.ID == c.DecisionID {
			text = d.Text
		}
	}
	msg := fmt.Sprintf("Decision %q %s", text, outcome)

	return commit(j, c.TaskID, *task, msg)
}

func (a Applier) addTask(j domain.Journey, c AddTask) (Result, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return Result{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	var entries []domain.LogEntry

	phases := j.CurrentPhases()
	if len(phases) == 0 {
		entries = append(entries, domain.LogEntry{
			Type:        domain.EntryPhaseHeader,
			CurrentPlan: true,
			Phase: &domain.PhaseSnapshot{
				ID:   "phase-" + shortID(),
				Name: DefaultPhaseName,
			},
		})
	}

	task := domain.TaskSnapshot{
		ID:   "task-" + shortID(),
		Name: name,
	}
	if a.Matcher != nil {
		if agentID, ok := a.Matcher.Match(name); ok {
			task.AssignedAgentID = agentID
			task.Type = domain.TaskTypeAgent
		}
	}

	entries = append(entries,
		domain.LogEntry{Type: domain.EntryTaskDefinition, CurrentPlan: true, Task: &task},
		domain.LogEntry{Type: domain.EntrySystemMessage, Text: fmt.Sprintf("Added task %q", name)},
	)

	return appendBatch(j, entries)
}

func (a Applier) postMessage(j domain.Journey, c PostMessage) (Result, error) {
	switch c.Type {
	case domain.EntryUserRequest, domain.EntryAIResponse, domain.EntrySystemMessage:
	default:
		return Result{}, &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("%q is not a chat entry type", c.Type)}
	}
	if strings.TrimSpace(c.Text) == "" {
		return Result{}, &domain.ValidationError{Field: "text", Reason: "must not be empty"}
	}

	return appendBatch(j, []domain.LogEntry{{Type: c.Type, Text: c.Text}})
}

// commit flags every prior definition of taskID outdated and appends the
// documenting system-message plus the new authoritative task-definition as
// one atomic batch.
func commit(j domain.Journey, taskID string, task domain.TaskSnapshot, msg string) (Result, error) {
	j = j.Clone()
	for i := range j.Log {
		e := &j.Log[i]
		if e.Type == domain.EntryTaskDefinition && e.Task != nil && e.Task.ID == taskID && !e.Outdated {
			e.Outdated = true
			e.CurrentPlan = false
		}
	}

	return appendBatch(j, []domain.LogEntry{
		{Type: domain.EntrySystemMessage, Text: msg},
		{Type: domain.EntryTaskDefinition, CurrentPlan: true, Task: &task},
	})
}

func appendBatch(j domain.Journey, entries []domain.LogEntry) (Result, error) {
	j = j.Clone()
	lg := journal.Load(j.ID, j.Log)
	full, err := lg.AppendBatch(entries)
	if err != nil {
		return Result{}, err
	}

	appended := make([]domain.LogEntry, len(entries))
	copy(appended, full[len(full)-len(entries):])

	j.Log = full
	j.UpdatedAt = time.Now()
	return Result{Journey: j, Appended: appended}, nil
}

func shortID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
