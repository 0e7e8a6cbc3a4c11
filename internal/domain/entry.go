package domain

import "time"

// Decision is a yes/no approval point attached to a task
type Decision struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	QuickApprove bool   `json:"quick_approve,omitempty"`
	Approved     bool   `json:"approved"`
}

// PhaseSnapshot is a denormalized copy of phase state at entry-creation time
type PhaseSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TaskSnapshot is a denormalized copy of task state at entry-creation time.
// The current state of a task is the most recent non-outdated snapshot in
// the log, not a canonical record elsewhere.
type TaskSnapshot struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Completed       bool       `json:"completed"`
	Description     string     `json:"description,omitempty"`
	Type            TaskType   `json:"type,omitempty"`
	Decisions       []Decision `json:"decisions,omitempty"`
	AssignedAgentID string     `json:"assigned_agent_id,omitempty"`
	Actions         []string   `json:"actions,omitempty"`
}

// Clone returns a deep copy of the snapshot
func (t TaskSnapshot) Clone() TaskSnapshot {
	out := t
	if t.Decisions != nil {
		out.Decisions = make([]Decision, len(t.Decisions))
		copy(out.Decisions, t.Decisions)
	}
	if t.Actions != nil {
		out.Actions = make([]string, len(t.Actions))
		copy(out.Actions, t.Actions)
	}
	return out
}

// LogEntry is an immutable, timestamped fact appended to a journey's history.
// Entries are never edited after creation; updating a task means appending a
// new task-definition entry and flagging the prior one outdated.
type LogEntry struct {
	ID          string    `json:"id"`
	JourneyID   string    `json:"journey_id"`
	Type        EntryType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Outdated    bool      `json:"outdated,omitempty"`
	CurrentPlan bool      `json:"current_plan,omitempty"`

	// Type-specific payload. Text carries chat and system content; Phase
	// and Task are set for phase-header and task-definition entries.
	Text  string         `json:"text,omitempty"`
	Phase *PhaseSnapshot `json:"phase,omitempty"`
	Task  *TaskSnapshot  `json:"task,omitempty"`
}

// Clone returns a deep copy of the entry
func (e LogEntry) Clone() LogEntry {
	out := e
	if e.Phase != nil {
		p := *e.Phase
		out.Phase = &p
	}
	if e.Task != nil {
		t := e.Task.Clone()
		out.Task = &t
	}
	return out
}
