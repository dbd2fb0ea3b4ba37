package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sessionColumns = `id, label, stage_count, rounds, completed_count, total_seconds, status, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var status, startedAt string
	var completedAt sql.NullString
	if err := row.Scan(&sess.ID, &sess.Label, &sess.StageCount, &sess.Rounds, &sess.CompletedCount,
		&sess.TotalSeconds, &status, &startedAt, &completedAt); err != nil {
		return nil, err
	}
	sess.Status = SessionStatus(status)
	sess.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if completedAt.Valid {
		t, _ := time.Parse(time.RFC3339, completedAt.String)
		sess.CompletedAt = &t
	}
	return sess, nil
}

// StartSession records the start of a run over stageCount stages for rounds rounds.
func (s *Store) StartSession(label string, stageCount, rounds int) (*Session, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO sessions (label, stage_count, rounds, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		label, stageCount, rounds, StatusRunning, now,
	)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

func (s *Store) GetSession(id int64) (*Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return sess, nil
}

// GetRunningSession returns the most recent running session, or nil.
func (s *Store) GetRunningSession() (*Session, error) {
	row := s.db.QueryRow(`SELECT ` + sessionColumns + ` FROM sessions WHERE status = 'running' ORDER BY id DESC LIMIT 1`)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get running session: %w", err)
	}
	return sess, nil
}

// RecordStage adds one finished stage of the given length to a session.
func (s *Store) RecordStage(id int64, seconds int) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET completed_count = completed_count + 1, total_seconds = total_seconds + ? WHERE id = ?`,
		seconds, id,
	)
	if err != nil {
		return fmt.Errorf("record stage: %w", err)
	}
	return expectRow(res, id)
}

func (s *Store) CompleteSession(id int64) error {
	return s.finishSession(id, StatusCompleted)
}

func (s *Store) CancelSession(id int64) error {
	return s.finishSession(id, StatusCancelled)
}

func (s *Store) finishSession(id int64, status SessionStatus) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE sessions SET status = ?, completed_at = ? WHERE id = ? AND status = 'running'`,
		status, now, id,
	)
	if err != nil {
		return fmt.Errorf("%s session: %w", status, err)
	}
	return expectRow(res, id)
}

func expectRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) ListSessions(f SessionFilter) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	var args []any

	if f.Status != nil {
		query += ` AND status = ?`
		args = append(args, *f.Status)
	}
	if f.From != nil {
		query += ` AND started_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND started_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// GetDailySummary aggregates finished (completed or cancelled) sessions per
// day in [from, to).
func (s *Store) GetDailySummary(from, to time.Time) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT date(started_at) AS day, COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(total_seconds), 0)
		FROM sessions
		WHERE status != 'running'
		  AND started_at >= ? AND started_at < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var ds DailySummary
		if err := rows.Scan(&ds.Date, &ds.SessionCount, &ds.CompletedCount, &ds.TotalSeconds); err != nil {
			return nil, err
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}

// GetTodayTotal returns the seconds breathed today (UTC) across all sessions.
func (s *Store) GetTodayTotal() (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(total_seconds), 0)
		FROM sessions
		WHERE date(started_at) = ?`, today,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("today total: %w", err)
	}
	return total.Int64, nil
}
