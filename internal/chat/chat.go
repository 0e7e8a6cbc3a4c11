// Package chat handles free-text journey input. Messages matching the
// "add task:" convention become structured task mutations; everything else
// passes through to the assistant collaborator unmodified.
package chat

import (
	"context"
	"strings"

	"github.com/voyagehq/journeyd/internal/domain"
	"github.com/voyagehq/journeyd/internal/mutator"
)

// Assistant produces the reply for a pass-through chat message.
// Implementations are collaborators; no inference happens here.
type Assistant interface {
	Reply(ctx context.Context, j domain.Journey, text string) (string, error)
}

const addTaskPrefix = "add task:"

// ParseAddTask recognizes the "add task: <name>" chat convention
func ParseAddTask(text string) (name string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len(addTaskPrefix) {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len(addTaskPrefix)], addTaskPrefix) {
		return "", false
	}
	name = strings.TrimSpace(trimmed[len(addTaskPrefix):])
	if name == "" {
		return "", false
	}
	return name, true
}

// Service routes chat submissions through the mutation runner so chat
// appends never interleave with structured mutations
type Service struct {
	runner    *mutator.Runner
	assistant Assistant
}

// NewService creates a chat service
func NewService(runner *mutator.Runner, assistant Assistant) *Service {
	return &Service{runner: runner, assistant: assistant}
}

// Submit records the user's message and the response it provoked. A task
// command creates the task; any other text is answered by the assistant.
func (s *Service) Submit(ctx context.Context, journeyID, text string) (domain.Journey, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Journey{}, &domain.ValidationError{Field: "text", Reason: "must not be empty"}
	}

	j, err := s.runner.Execute(ctx, mutator.PostMessage{
		Journey: journeyID,
		Type:    domain.EntryUserRequest,
		Text:    text,
	})
	if err != nil {
		return domain.Journey{}, err
	}

	if name, ok := ParseAddTask(text); ok {
		return s.runner.Execute(ctx, mutator.AddTask{Journey: journeyID, Name: name})
	}

	reply, err := s.assistant.Reply(ctx, j, text)
	if err != nil {
		return j, err
	}
	return s.runner.Execute(ctx, mutator.PostMessage{
		Journey: journeyID,
		Type:    domain.EntryAIResponse,
		Text:    reply,
	})
}
