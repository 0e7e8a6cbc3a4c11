package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/voyagehq/journeyd/internal/domain"
)

// CannedAssistant is the stub assistant collaborator: deterministic canned
// replies keyed off the journey's current plan, no inference
type CannedAssistant struct{}

// Reply implements Assistant
func (CannedAssistant) Reply(_ context.Context, j domain.Journey, text string) (string, error) {
	s := j.Summarize()

	switch {
	case strings.Contains(strings.ToLower(text), "status"):
		return fmt.Sprintf("%d of %d tasks are complete across %d phases.", s.Completed, s.Tasks, s.Phases), nil
	case s.Tasks == 0:
		return "This journey has no tasks yet. Try \"add task: <name>\" to create one.", nil
	default:
		return fmt.Sprintf("Noted. You have %d open tasks; I'll keep the plan updated.", s.Tasks-s.Completed), nil
	}
}
