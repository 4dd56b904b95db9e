// Package history records suggestion runs and follow-up questions so past
// activity can be listed from the CLI and the web UI.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/stylelens/internal/db"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02 15:04:05.000000"

// Run is one suggestion request and how it ended.
type Run struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	PageURL    string    `json:"page_url"`
	Kind       string    `json:"kind"`
	HTMLChars  int       `json:"html_chars"`
	CSSChars   int       `json:"css_chars"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowUp is one follow-up question and how it ended.
type FollowUp struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Question  string    `json:"question"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Store reads and writes the run log.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// LogRun inserts a run. An empty ID gets a UUID.
func (s *Store) LogRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestion_runs (
			id, session_id, page_url, kind, html_chars, css_chars, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SessionID, run.PageURL, run.Kind,
		run.HTMLChars, run.CSSChars, run.DurationMS,
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// LogFollowUp inserts a follow-up question. An empty ID gets a UUID.
func (s *Store) LogFollowUp(ctx context.Context, f FollowUp) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO followups (id, session_id, question, kind, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.SessionID, f.Question, f.Kind, f.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting follow-up: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. A non-positive limit
// means 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, page_url, kind, html_chars, css_chars, duration_ms, created_at
		FROM suggestion_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created any
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.PageURL, &r.Kind, &r.HTMLChars, &r.CSSChars, &r.DurationMS, &created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FollowUps returns the questions asked in one session, oldest first.
func (s *Store) FollowUps(ctx context.Context, sessionID string) ([]FollowUp, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, question, kind, created_at
		FROM followups WHERE session_id = ?
		ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying follow-ups: %w", err)
	}
	defer rows.Close()

	var out []FollowUp
	for rows.Next() {
		var (
			f       FollowUp
			created any
		)
		if err := rows.Scan(&f.ID, &f.SessionID, &f.Question, &f.Kind, &created); err != nil {
			return nil, fmt.Errorf("scanning follow-up: %w", err)
		}
		if f.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("follow-up %s: %w", f.ID, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// parseTime reads created_at as stored by LogRun, by the column default,
// or as a time value from databases created with a DATETIME column.
func parseTime(v any) (time.Time, error) {
	var s string
	switch v := v.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return time.Time{}, fmt.Errorf("created_at: unexpected type %T", v)
	}
	for _, layout := range []string{timeLayout, time.DateTime, time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("created_at: cannot parse %q", s)
}

