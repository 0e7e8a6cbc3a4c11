// Package journeystore provides SQLite-backed journey persistence. A save
// writes the journey and its full log in one transaction; entry rows are
// upserted so supersession flag changes reach disk while history rows are
// never deleted.
package journeystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voyagehq/journeyd/internal/domain"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed journey persistence
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateJourney creates a journey with its opening journey-start entry
func (s *Store) CreateJourney(ctx context.Context, title string) (domain.Journey, error) {
	now := time.Now()
	j := domain.Journey{
		ID:        "journey-" + uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Log: []domain.LogEntry{{
			ID:        fmt.Sprintf("%s-%d-%s", domain.EntryJourneyStart, now.UnixMilli(), uuid.NewString()[:8]),
			Type:      domain.EntryJourneyStart,
			Timestamp: now,
			Text:      title,
		}},
	}
	j.Log[0].JourneyID = j.ID

	return s.SaveJourney(ctx, j)
}

// GetJourney returns the journey and its full log in append order
func (s *Store) GetJourney(ctx context.Context, id string) (domain.Journey, error) {
	var j domain.Journey
	row := s.db.QueryRowContext(ctx, `SELECT id, title, created_at, updated_at FROM journeys WHERE id = ?`, id)
	if err := row.Scan(&j.ID, &j.Title, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Journey{}, domain.NotFound("journey", id)
		}
		return domain.Journey{}, fmt.Errorf("loading journey: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, timestamp, outdated, current_plan, text, phase, task
		FROM log_entries WHERE journey_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("loading log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return domain.Journey{}, err
		}
		e.JourneyID = id
		j.Log = append(j.Log, e)
	}
	return j, rows.Err()
}

// SaveJourney persists the journey and its log atomically and returns the
// stored copy
func (s *Store) SaveJourney(ctx context.Context, j domain.Journey) (domain.Journey, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Journey{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO journeys (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at
	`, j.ID, j.Title, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("saving journey: %w", err)
	}

	for seq, e := range j.Log {
		phaseJSON, taskJSON, err := marshalPayload(e)
		if err != nil {
			return domain.Journey{}, err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO log_entries (id, journey_id, seq, type, timestamp, outdated, current_plan, text, phase, task)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				seq = excluded.seq,
				outdated = excluded.outdated,
				current_plan = excluded.current_plan,
				phase = excluded.phase,
				task = excluded.task
		`, e.ID, j.ID, seq, string(e.Type), e.Timestamp, e.Outdated, e.CurrentPlan, e.Text, phaseJSON, taskJSON)
		if err != nil {
			return domain.Journey{}, fmt.Errorf("saving log entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Journey{}, fmt.Errorf("committing journey: %w", err)
	}
	return j, nil
}

// ListJourneys returns summaries for all journeys, most recently updated
// first
func (s *Store) ListJourneys(ctx context.Context) ([]domain.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM journeys ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]domain.Summary, 0, len(ids))
	for _, id := range ids {
		j, err := s.GetJourney(ctx, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, j.Summarize())
	}
	return summaries, nil
}

// Flush forces a WAL checkpoint and returns the journey count. Used by the
// periodic durability sweep.
func (s *Store) Flush(ctx context.Context) (int, error) {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journeys`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func marshalPayload(e domain.LogEntry) (phase, task sql.NullString, err error) {
	if e.Phase != nil {
		b, err := json.Marshal(e.Phase)
		if err != nil {
			return phase, task, fmt.Errorf("encoding phase snapshot: %w", err)
		}
		phase = sql.NullString{String: string(b), Valid: true}
	}
	if e.Task != nil {
		b, err := json.Marshal(e.Task)
		if err != nil {
			return phase, task, fmt.Errorf("encoding task snapshot: %w", err)
		}
		task = sql.NullString{String: string(b), Valid: true}
	}
	return phase, task, nil
}

func scanEntry(rows *sql.Rows) (domain.LogEntry, error) {
	var e domain.LogEntry
	var typ string
	var text, phaseJSON, taskJSON sql.NullString

	if err := rows.Scan(&e.ID, &typ, &e.Timestamp, &e.Outdated, &e.CurrentPlan, &text, &phaseJSON, &taskJSON); err != nil {
		return e, fmt.Errorf("scanning log entry: %w", err)
	}

	e.Type = domain.EntryType(typ)
	if text.Valid {
		e.Text = text.String
	}
	if phaseJSON.Valid && phaseJSON.String != "" {
		var p domain.PhaseSnapshot
		if err := json.Unmarshal([]byte(phaseJSON.String), &p); err != nil {
			return e, fmt.Errorf("decoding phase snapshot: %w", err)
		}
		e.Phase = &p
	}
	if taskJSON.Valid && taskJSON.String != "" {
		var t domain.TaskSnapshot
		if err := json.Unmarshal([]byte(taskJSON.String), &t); err != nil {
			return e, fmt.Errorf("decoding task snapshot: %w", err)
		}
		e.Task = &t
	}
	return e, nil
}
