package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/voyagehq/journeyd/internal/chat"
	"github.com/voyagehq/journeyd/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ChatFrame is a message from a websocket chat client
type ChatFrame struct {
	Text string `json:"text"`
}

// ChatUpdate is a message to a websocket chat client. The provisional
// entry echoes the user's message before the mutation is confirmed; on
// failure a rollback frame names the entry the client must drop.
type ChatUpdate struct {
	Type  string            `json:"type"` // "provisional", "confirmed", "rollback"
	Entry *domain.LogEntry  `json:"entry,omitempty"`
	Log   []domain.LogEntry `json:"log,omitempty"`
	Error string            `json:"error,omitempty"`
}

// chatSocket streams chat over a websocket. Each inbound frame follows the
// optimistic-append-then-reconcile flow: echo a provisional entry, run the
// submit, then either confirm with the authoritative log or roll back.
func (s *Server) chatSocket(w http.ResponseWriter, r *http.Request, journeyID string) {
	j, err := s.store.GetJourney(r.Context(), journeyID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	view := chat.NewPendingView(journeyID, j.Log)

	for {
		var frame ChatFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		provisional := view.AppendProvisional(frame.Text)
		if err := conn.WriteJSON(ChatUpdate{Type: "provisional", Entry: &provisional}); err != nil {
			return
		}

		updated, err := s.chat.Submit(r.Context(), journeyID, frame.Text)
		if err != nil {
			view.Rollback()
			if werr := conn.WriteJSON(ChatUpdate{Type: "rollback", Entry: &provisional, Error: err.Error()}); werr != nil {
				return
			}
			continue
		}

		view.Confirm(updated.Log)
		s.Broadcast(SSEEvent{Type: "journey_update", Data: updated.Summarize()})
		if err := conn.WriteJSON(ChatUpdate{Type: "confirmed", Log: view.Entries()}); err != nil {
			return
		}
	}
}
