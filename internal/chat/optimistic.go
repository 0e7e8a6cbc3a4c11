package chat

import (
	"time"

	"github.com/voyagehq/journeyd/internal/domain"
	"github.com/voyagehq/journeyd/internal/journal"
)

// PendingView is a client-local copy of a journey log used for optimistic
// rendering: the user's message shows immediately, before the mutation is
// confirmed. The view never touches the authoritative log; a failed submit
// rolls the provisional entry out of the copy only.
type PendingView struct {
	journeyID     string
	entries       []domain.LogEntry
	provisionalID string
}

// NewPendingView copies the current log into a view
func NewPendingView(journeyID string, entries []domain.LogEntry) *PendingView {
	v := &PendingView{journeyID: journeyID}
	v.entries = make([]domain.LogEntry, len(entries))
	for i, e := range entries {
		v.entries[i] = e.Clone()
	}
	return v
}

// AppendProvisional adds the not-yet-confirmed user message to the view and
// returns it. Only one provisional entry is tracked at a time; appending a
// new one confirms nothing about the old.
func (v *PendingView) AppendProvisional(text string) domain.LogEntry {
	e := domain.LogEntry{
		ID:        journal.NewEntryID(domain.EntryUserRequest),
		JourneyID: v.journeyID,
		Type:      domain.EntryUserRequest,
		Timestamp: time.Now(),
		Text:      text,
	}
	v.entries = append(v.entries, e)
	v.provisionalID = e.ID
	return e
}

// Confirm replaces the view with the authoritative log after a successful
// submit. A rollback racing with this is harmless: the provisional id no
// longer appears in the authoritative entries.
func (v *PendingView) Confirm(authoritative []domain.LogEntry) {
	v.entries = make([]domain.LogEntry, len(authoritative))
	for i, e := range authoritative {
		v.entries[i] = e.Clone()
	}
	v.provisionalID = ""
}

// Rollback removes the provisional entry after a failed submit
func (v *PendingView) Rollback() {
	if v.provisionalID == "" {
		return
	}
	out := v.entries[:0]
	for _, e := range v.entries {
		if e.ID == v.provisionalID {
			continue
		}
		out = append(out, e)
	}
	v.entries = out
	v.provisionalID = ""
}

// Entries returns the view's current entries
func (v *PendingView) Entries() []domain.LogEntry {
	out := make([]domain.LogEntry, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.Clone()
	}
	return out
}
