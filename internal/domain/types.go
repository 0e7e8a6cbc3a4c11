package domain

// EntryType classifies a journey log entry
type EntryType string

const (
	EntryJourneyStart   EntryType = "journey-start"
	EntryPhaseHeader    EntryType = "phase-header"
	EntryTaskDefinition EntryType = "task-definition"
	EntryUserRequest    EntryType = "user-request"
	EntryAIResponse     EntryType = "ai-response"
	EntrySystemMessage  EntryType = "system-message"
)

// IsValid reports whether t is one of the known entry types
func (t EntryType) IsValid() bool {
	switch t {
	case EntryJourneyStart, EntryPhaseHeader, EntryTaskDefinition,
		EntryUserRequest, EntryAIResponse, EntrySystemMessage:
		return true
	}
	return false
}

// TaskType classifies a task for display purposes
type TaskType string

const (
	TaskTypeStandard TaskType = ""
	TaskTypeDecision TaskType = "decision"
	TaskTypeAgent    TaskType = "agent"
)
