package mutator

import "github.com/voyagehq/journeyd/internal/domain"

// Command is a structured mutation against one journey's log. Commands are
// applied by a reducer: they never edit appended entries, they append new
// ones and flag superseded definitions outdated.
type Command interface {
	JourneyID() string
}

// ToggleComplete flips a task's completed flag
type ToggleComplete struct {
	Journey   string
	TaskID    string
	Completed bool
}

func (c ToggleComplete) JourneyID() string { return c.Journey }

// EditTask renames a task
type EditTask struct {
	Journey string
	TaskID  string
	Name    string
}

func (c EditTask) JourneyID() string { return c.Journey }

// ResolveDecision records the outcome of a decision attached to a task
type ResolveDecision struct {
	Journey    string
	TaskID     string
	DecisionID string
	Approved   bool
}

func (c ResolveDecision) JourneyID() string { return c.Journey }

// AddTask creates a task in the journey's first phase, creating a default
// phase when the journey has none
type AddTask struct {
	Journey string
	Name    string
}

func (c AddTask) JourneyID() string { return c.Journey }

// PostMessage appends a chat or system turn. Routed through the same
// per-journey queue as structured mutations so appends never interleave.
type PostMessage struct {
	Journey string
	Type    domain.EntryType
	Text    string
}

func (c PostMessage) JourneyID() string { return c.Journey }
