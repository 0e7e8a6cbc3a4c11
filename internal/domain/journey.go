package domain

import "time"

// Journey is a user-initiated, multi-phase plan tracked as an ordered log
type Journey struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Log       []LogEntry `json:"log"`
}

// Clone returns a deep copy of the journey
func (j Journey) Clone() Journey {
	out := j
	out.Log = make([]LogEntry, len(j.Log))
	for i, e := range j.Log {
		out.Log[i] = e.Clone()
	}
	return out
}

// CurrentTask returns the latest non-outdated task-definition snapshot for
// taskID, or nil if the log holds none
func (j Journey) CurrentTask(taskID string) *TaskSnapshot {
	for i := len(j.Log) - 1; i >= 0; i-- {
		e := j.Log[i]
		if e.Type != EntryTaskDefinition || e.Outdated || e.Task == nil {
			continue
		}
		if e.Task.ID == taskID {
			t := e.Task.Clone()
			return &t
		}
	}
	return nil
}

// CurrentPhases returns the non-outdated phase snapshots in log order
func (j Journey) CurrentPhases() []PhaseSnapshot {
	var phases []PhaseSnapshot
	seen := make(map[string]bool)
	for _, e := range j.Log {
		if e.Type != EntryPhaseHeader || e.Outdated || e.Phase == nil {
			continue
		}
		if seen[e.Phase.ID] {
			continue
		}
		seen[e.Phase.ID] = true
		phases = append(phases, *e.Phase)
	}
	return phases
}

// Summary holds aggregate counts for listings
type Summary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Phases     int       `json:"phases"`
	Tasks      int       `json:"tasks"`
	Completed  int       `json:"completed"`
	Entries    int       `json:"entries"`
	UpdatedAt  time.Time `json:"updated_at"`
	LastAction string    `json:"last_action,omitempty"`
}

// Summarize computes aggregate counts from the journey log
func (j Journey) Summarize() Summary {
	s := Summary{
		ID:        j.ID,
		Title:     j.Title,
		Entries:   len(j.Log),
		UpdatedAt: j.UpdatedAt,
	}

	s.Phases = len(j.CurrentPhases())

	latest := make(map[string]TaskSnapshot)
	for _, e := range j.Log {
		if e.Type != EntryTaskDefinition || e.Outdated || e.Task == nil {
			continue
		}
		latest[e.Task.ID] = *e.Task
	}
	s.Tasks = len(latest)
	for _, t := range latest {
		if t.Completed {
			s.Completed++
		}
	}

	for i := len(j.Log) - 1; i >= 0; i-- {
		if j.Log[i].Type == EntrySystemMessage {
			s.LastAction = j.Log[i].Text
			break
		}
	}

	return s
}
