package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rankedlist/internal/model"

	_ "modernc.org/sqlite"
)

// SQLite keeps responses in a single table of a local database file.
type SQLite struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
	now    func() time.Time
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("results: sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Several hosts may write the same file; WAL allows one writer with
	// concurrent readers.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trial_responses (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			trial_id TEXT NOT NULL,
			recorded_at_unixms INTEGER NOT NULL,
			rt_ms INTEGER NOT NULL,
			timed_out INTEGER NOT NULL,
			item_count INTEGER NOT NULL,
			response_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trial_responses_trial ON trial_responses(trial_id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Record(ctx context.Context, resp model.TrialResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	timedOut := 0
	if resp.TimedOut {
		timedOut = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trial_responses(trial_id, recorded_at_unixms, rt_ms, timed_out, item_count, response_json)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		resp.TrialID, s.now().UTC().UnixMilli(), resp.RT, timedOut, len(resp.Response), string(b),
	)
	if err != nil {
		return fmt.Errorf("results: insert %s: %w", resp.TrialID, err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	q := `SELECT seq, recorded_at_unixms, response_json FROM trial_responses ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			rec  Record
			ms   int64
			body string
		)
		if err := rows.Scan(&rec.Seq, &ms, &body); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(body), &rec.Response); err != nil {
			return nil, fmt.Errorf("results: decode row %d: %w", rec.Seq, err)
		}
		rec.RecordedAt = time.UnixMilli(ms).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
