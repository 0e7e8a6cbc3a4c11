package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/voyagehq/journeyd/internal/mutator"
	"github.com/voyagehq/journeyd/internal/projector"
)

// StatusResponse is the API response for overall status
type StatusResponse struct {
	Journeys        int `json:"journeys"`
	Tasks           int `json:"tasks"`
	Completed       int `json:"completed"`
	AgentsInstalled int `json:"agents_installed"`
}

// CreateJourneyRequest is the POST body for journey creation. Tasks, when
// present, seed the journey with an initial plan.
type CreateJourneyRequest struct {
	Title string   `json:"title"`
	Tasks []string `json:"tasks,omitempty"`
}

// ChatRequest is the POST body for chat submission
type ChatRequest struct {
	Text string `json:"text"`
}

// ToggleRequest is the POST body for task completion changes
type ToggleRequest struct {
	Completed bool `json:"completed"`
}

// RenameRequest is the POST body for task edits
type RenameRequest struct {
	Name string `json:"name"`
}

// DecisionRequest is the POST body for decision resolution
type DecisionRequest struct {
	Approved bool `json:"approved"`
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		summaries, err := s.store.ListJourneys(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		var status StatusResponse
		status.Journeys = len(summaries)
		for _, sum := range summaries {
			status.Tasks += sum.Tasks
			status.Completed += sum.Completed
		}
		if s.catalog != nil {
			status.AgentsInstalled = len(s.catalog.Installed())
		}

		writeJSON(w, status)
	}
}

func (s *Server) journeysHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			summaries, err := s.store.ListJourneys(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, summaries)

		case http.MethodPost:
			var req CreateJourneyRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if strings.TrimSpace(req.Title) == "" {
				writeError(w, http.StatusBadRequest, "title required")
				return
			}

			j, err := s.store.CreateJourney(r.Context(), strings.TrimSpace(req.Title))
			if err != nil {
				writeError(w, errorStatus(err), err.Error())
				return
			}

			for _, name := range req.Tasks {
				j, err = s.runner.Execute(r.Context(), mutator.AddTask{Journey: j.ID, Name: name})
				if err != nil {
					writeError(w, errorStatus(err), err.Error())
					return
				}
			}

			s.Broadcast(SSEEvent{Type: "journey_update", Data: j.Summarize()})
			writeJSON(w, j)

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

// journeyHandler routes /api/journeys/{id}[/...] sub-resources
func (s *Server) journeyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/journeys/")
		segments := strings.Split(strings.Trim(path, "/"), "/")
		if len(segments) == 0 || segments[0] == "" {
			writeError(w, http.StatusBadRequest, "journey ID required")
			return
		}
		id := segments[0]
		rest := segments[1:]

		switch {
		case len(rest) == 0:
			s.getJourney(w, r, id)
		case len(rest) == 1 && rest[0] == "view":
			s.getJourneyView(w, r, id)
		case len(rest) == 1 && rest[0] == "chat":
			s.submitChat(w, r, id)
		case len(rest) == 2 && rest[0] == "chat" && rest[1] == "ws":
			s.chatSocket(w, r, id)
		case len(rest) == 3 && rest[0] == "tasks" && rest[2] == "toggle":
			s.toggleTask(w, r, id, rest[1])
		case len(rest) == 3 && rest[0] == "tasks" && rest[2] == "rename":
			s.renameTask(w, r, id, rest[1])
		case len(rest) == 4 && rest[0] == "tasks" && rest[2] == "decisions":
			s.resolveDecision(w, r, id, rest[1], rest[3])
		default:
			writeError(w, http.StatusNotFound, "unknown resource")
		}
	}
}

func (s *Server) getJourney(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	j, err := s.store.GetJourney(r.Context(), id)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, j)
}

func (s *Server) getJourneyView(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	j, err := s.store.GetJourney(r.Context(), id)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, projector.Project(j.Log))
}

func (s *Server) submitChat(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	j, err := s.chat.Submit(r.Context(), id, req.Text)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.Broadcast(SSEEvent{Type: "journey_update", Data: j.Summarize()})
	writeJSON(w, j)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request, id, taskID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, mutator.ToggleComplete{Journey: id, TaskID: taskID, Completed: req.Completed})
}

func (s *Server) renameTask(w http.ResponseWriter, r *http.Request, id, taskID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, mutator.EditTask{Journey: id, TaskID: taskID, Name: req.Name})
}

func (s *Server) resolveDecision(w http.ResponseWriter, r *http.Request, id, taskID, decisionID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mutate(w, r, mutator.ResolveDecision{Journey: id, TaskID: taskID, DecisionID: decisionID, Approved: req.Approved})
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, cmd mutator.Command) {
	j, err := s.runner.Execute(r.Context(), cmd)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.Broadcast(SSEEvent{Type: "journey_update", Data: j.Summarize()})
	writeJSON(w, j)
}

func (s *Server) listAgentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, s.catalog.List())
	}
}

func (s *Server) agentActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/api/agents/")
		segments := strings.Split(strings.Trim(path, "/"), "/")
		if len(segments) != 2 {
			writeError(w, http.StatusBadRequest, "agent ID and action required")
			return
		}
		id, action := segments[0], segments[1]

		var err error
		switch action {
		case "install":
			err = s.catalog.Install(id)
		case "uninstall":
			err = s.catalog.Uninstall(id)
		default:
			writeError(w, http.StatusNotFound, "unknown action")
			return
		}
		if err != nil {
			writeError(w, errorStatus(err), err.Error())
			return
		}

		agent, err := s.catalog.Get(id)
		if err != nil {
			writeError(w, errorStatus(err), err.Error())
			return
		}
		writeJSON(w, agent)
	}
}
