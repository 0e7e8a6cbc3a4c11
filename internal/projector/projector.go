// Package projector derives the display-ready view of a journey log. The
// projection is a pure function of the raw entry sequence: phase headers
// collect their immediately-following task definitions into a group, all
// other entries pass through standalone, and superseded entries stay
// visible but flagged.
package projector

import "github.com/voyagehq/journeyd/internal/domain"

// Kind classifies a display item
type Kind string

const (
	// KindEntry is a standalone log entry rendered as-is
	KindEntry Kind = "entry"
	// KindPhaseGroup is a phase header with its owned tasks attached
	KindPhaseGroup Kind = "phase"
	// KindPlaceholder marks an entry whose payload is missing; the log
	// must stay displayable no matter what was appended to it
	KindPlaceholder Kind = "placeholder"
)

// DisplayItem is one top-level element of the projected view
type DisplayItem struct {
	Kind  Kind            `json:"kind"`
	Entry domain.LogEntry `json:"entry"`

	// Tasks holds the phase group's owned task snapshots, in log order.
	// Only set for KindPhaseGroup.
	Tasks []domain.TaskSnapshot `json:"tasks,omitempty"`

	// Superseded marks an outdated entry rendered standalone so the UI
	// can dim it rather than hide it.
	Superseded bool `json:"superseded,omitempty"`
}

// Project transforms the raw log into its nested display view. It never
// fails: malformed entries degrade to placeholders. Output order equals
// input order, with phase groups occupying their header's position.
func Project(entries []domain.LogEntry) []DisplayItem {
	items := make([]DisplayItem, 0, len(entries))
	claimed := make(map[string]bool)

	i := 0
	for i < len(entries) {
		e := entries[i]

		if e.Type == domain.EntryPhaseHeader && !e.Outdated && e.Phase != nil {
			group, trailing, next := consumePhase(entries, i, claimed)
			items = append(items, group)
			items = append(items, trailing...)
			i = next
			continue
		}

		items = append(items, standalone(e))
		i++
	}

	// A non-outdated task-definition that was not adjacent to its phase
	// still belongs to that phase if any group claims its id; drop the
	// standalone copy to avoid duplicate rendering.
	out := items[:0:0]
	for _, it := range items {
		if it.Kind == KindEntry &&
			it.Entry.Type == domain.EntryTaskDefinition &&
			!it.Superseded &&
			it.Entry.Task != nil &&
			claimed[it.Entry.Task.ID] {
			continue
		}
		out = append(out, it)
	}
	return out
}

// consumePhase builds a phase group starting at index i. The look-ahead
// consumes following task-definition entries into the group, skipping over
// outdated ones (they render standalone, flagged, right after the group)
// and stopping at the first entry of any other type.
func consumePhase(entries []domain.LogEntry, i int, claimed map[string]bool) (DisplayItem, []DisplayItem, int) {
	group := DisplayItem{Kind: KindPhaseGroup, Entry: entries[i].Clone()}
	var trailing []DisplayItem

	j := i + 1
	for j < len(entries) {
		n := entries[j]
		if n.Type != domain.EntryTaskDefinition || n.Task == nil {
			break
		}
		if n.Outdated {
			trailing = append(trailing, DisplayItem{Kind: KindEntry, Entry: n.Clone(), Superseded: true})
			j++
			continue
		}
		group.Tasks = append(group.Tasks, n.Task.Clone())
		claimed[n.Task.ID] = true
		j++
	}

	return group, trailing, j
}

func standalone(e domain.LogEntry) DisplayItem {
	switch e.Type {
	case domain.EntryPhaseHeader:
		if e.Phase == nil {
			return DisplayItem{Kind: KindPlaceholder, Entry: e.Clone(), Superseded: e.Outdated}
		}
		return DisplayItem{Kind: KindEntry, Entry: e.Clone(), Superseded: e.Outdated}
	case domain.EntryTaskDefinition:
		if e.Task == nil {
			return DisplayItem{Kind: KindPlaceholder, Entry: e.Clone(), Superseded: e.Outdated}
		}
		return DisplayItem{Kind: KindEntry, Entry: e.Clone(), Superseded: e.Outdated}
	default:
		return DisplayItem{Kind: KindEntry, Entry: e.Clone(), Superseded: e.Outdated}
	}
}
