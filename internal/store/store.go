// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuiano/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for practice history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			root TEXT NOT NULL,
			scale_type TEXT NOT NULL,
			direction TEXT NOT NULL,
			tempo INTEGER NOT NULL,
			repetitions INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			on_time INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_note_stats (
			session_id INTEGER NOT NULL,
			note TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (session_id, note)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_scale_type ON sessions(scale_type);`,
		`CREATE INDEX IF NOT EXISTS idx_session_note_stats_note ON session_note_stats(note);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// InsertSession stores a completed session and its per-note stats.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, notes []model.NoteStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (uuid, started_at, ended_at, root, scale_type, direction, tempo, repetitions, correct, incorrect, on_time, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UUID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.Root,
		rec.ScaleType,
		rec.Direction,
		rec.Tempo,
		rec.Repetitions,
		rec.Correct,
		rec.Incorrect,
		rec.OnTime,
		rec.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(notes) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_note_stats (session_id, note, correct, incorrect, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ns := range notes {
			if _, err = stmt.ExecContext(ctx, id, ns.Note, ns.Correct, ns.Incorrect, ns.LatencySumMs, ns.LatencyCount); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetWeakNotes aggregates note stats over the most recent sessions.
func (s *Store) GetWeakNotes(ctx context.Context, window int, scaleType string) ([]model.NoteAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR scale_type = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT ns.note, SUM(ns.correct) AS correct, SUM(ns.incorrect) AS incorrect,
		SUM(ns.latency_sum_ms) AS latency_sum_ms, SUM(ns.latency_count) AS latency_count
	FROM session_note_stats ns
	JOIN recent_sessions r ON r.id = ns.session_id
	GROUP BY ns.note`

	rows, err := s.db.QueryContext(ctx, query, scaleType, scaleType, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanNoteAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config, oldest
// first. Last keeps only the most recent sessions.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.ScaleType != "" {
		clauses = append(clauses, "scale_type = ?")
		args = append(args, cfg.ScaleType)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, root, scale_type, tempo, correct, incorrect, on_time, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Root, &agg.ScaleType, &agg.Tempo, &agg.Correct, &agg.Incorrect, &agg.OnTime, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return sessions, nil
}

// ListNoteAggregatesForSessions aggregates per-note stats across sessions.
func (s *Store) ListNoteAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.NoteAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(sessionIDs)
	query := fmt.Sprintf(`SELECT note, SUM(correct) AS correct, SUM(incorrect) AS incorrect,
		SUM(latency_sum_ms) AS latency_sum_ms, SUM(latency_count) AS latency_count
		FROM session_note_stats
		WHERE session_id IN (%s)
		GROUP BY note`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanNoteAggregates(rows)
}

// ListNoteStatsForSessions returns per-session stats for selected notes.
func (s *Store) ListNoteStatsForSessions(ctx context.Context, sessionIDs []int64, notes []string) (map[int64]map[string]model.NoteAggregate, error) {
	if len(sessionIDs) == 0 || len(notes) == 0 {
		return map[int64]map[string]model.NoteAggregate{}, nil
	}
	idPlaceholders, args := inClause(sessionIDs)
	notePlaceholders := make([]string, len(notes))
	for i, n := range notes {
		notePlaceholders[i] = "?"
		args = append(args, n)
	}

	query := fmt.Sprintf(`SELECT session_id, note, correct, incorrect, latency_sum_ms, latency_count
		FROM session_note_stats
		WHERE session_id IN (%s) AND note IN (%s)`, idPlaceholders, strings.Join(notePlaceholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[int64]map[string]model.NoteAggregate{}
	for rows.Next() {
		var sessionID int64
		var agg model.NoteAggregate
		if err := rows.Scan(&sessionID, &agg.Note, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.NoteAggregate{}
		}
		result[sessionID][agg.Note] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func inClause(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	return strings.Join(placeholders, ","), args
}

func scanNoteAggregates(rows *sql.Rows) ([]model.NoteAggregate, error) {
	var result []model.NoteAggregate
	for rows.Next() {
		var agg model.NoteAggregate
		if err := rows.Scan(&agg.Note, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
