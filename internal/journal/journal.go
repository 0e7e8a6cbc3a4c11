// Package journal holds the canonical, append-only log of entries for a
// single journey. Entries are never removed or edited once appended;
// supersession is expressed by appending replacements.
package journal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voyagehq/journeyd/internal/domain"
)

// NewEntryID builds a unique entry id of the form {type}-{epochms}-{suffix}.
// The uuid-derived suffix keeps ids unique under rapid succession within
// the same millisecond.
func NewEntryID(t domain.EntryType) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%d-%s", t, time.Now().UnixMilli(), suffix)
}

// Log is the ordered entry sequence for one journey. Timestamps are
// monotonically non-decreasing in append order.
type Log struct {
	journeyID string
	mu        sync.Mutex
	entries   []domain.LogEntry
	lastTS    time.Time
	now       func() time.Time
}

// New creates an empty log for the given journey
func New(journeyID string) *Log {
	return &Log{journeyID: journeyID, now: time.Now}
}

// Load creates a log pre-populated with existing entries, preserving order
func Load(journeyID string, entries []domain.LogEntry) *Log {
	l := New(journeyID)
	for _, e := range entries {
		l.entries = append(l.entries, e.Clone())
		if e.Timestamp.After(l.lastTS) {
			l.lastTS = e.Timestamp
		}
	}
	return l
}

// Append assigns id and timestamp if absent, appends the entry, and returns
// a copy of the full log
func (l *Log) Append(e domain.LogEntry) []domain.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLocked(e)
	return l.snapshotLocked()
}

// AppendBatch appends all entries or none. Validation failures leave the
// log untouched.
func (l *Log) AppendBatch(entries []domain.LogEntry) ([]domain.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range entries {
		if !e.Type.IsValid() {
			return nil, &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown entry type %q", e.Type)}
		}
		if e.JourneyID != "" && e.JourneyID != l.journeyID {
			return nil, &domain.ValidationError{Field: "journey_id", Reason: "entry belongs to a different journey"}
		}
	}

	for _, e := range entries {
		l.appendLocked(e)
	}
	return l.snapshotLocked(), nil
}

// GetByID returns the entry with the given id
func (l *Log) GetByID(id string) (domain.LogEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return domain.LogEntry{}, false
}

// Entries returns a copy of the log in append order
func (l *Log) Entries() []domain.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Len returns the number of entries
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Log) appendLocked(e domain.LogEntry) {
	e = e.Clone()
	if e.ID == "" {
		e.ID = NewEntryID(e.Type)
	}
	if e.JourneyID == "" {
		e.JourneyID = l.journeyID
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	// Wall-clock regressions must not reorder the log.
	if e.Timestamp.Before(l.lastTS) {
		e.Timestamp = l.lastTS
	}
	l.lastTS = e.Timestamp
	l.entries = append(l.entries, e)
}

func (l *Log) snapshotLocked() []domain.LogEntry {
	out := make([]domain.LogEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Clone()
	}
	return out
}
