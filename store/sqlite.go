package store

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/finasync"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps findings in the state of a conversation session stored in
// SQLite. Findings are keyed "financial:<category>" so that they live next to
// other session values without colliding.
type SQLiteStore struct {
	scope Scope
	dsn   string
	table string
	db    *sql.DB
}

type SQLiteParams struct {
	// Optional database data source name.
	// Defaults to "file::memory:?cache=shared" (in-memory database).
	DSN string

	// Session the findings belong to.
	Scope Scope

	// Optional name of the session state table.
	// Defaults to "session_state".
	Table string
}

// NewSQLiteStore opens the database and creates the state table if needed.
func NewSQLiteStore(ctx context.Context, params SQLiteParams) (_ *SQLiteStore, err error) {
	s := &SQLiteStore{
		scope: params.Scope,
		dsn:   cmp.Or(params.DSN, "file::memory:?cache=shared"),
		table: cmp.Or(params.Table, "session_state"),
	}

	defer func() {
		if err != nil {
			if e := s.Close(); e != nil {
				err = errors.Join(err, e)
			}
		}
	}()

	s.db, err = sql.Open("sqlite3", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite3 database: %w", err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s" (
			app_name   TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			session_id TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (app_name, user_id, session_id, key)
		)
	`, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to create session state table: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Put(ctx context.Context, category finasync.Category, summary string) error {
	if err := validate(category); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO "%s" (app_name, user_id, session_id, key, value, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (app_name, user_id, session_id, key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.table),
		s.scope.App, s.scope.User, s.scope.Session, sessionKey(category), summary,
		clock().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("error writing finding %q: %w", category, err)
	}
	return nil
}

func (s *SQLiteStore) GetAll(ctx context.Context) (_ finasync.Snapshot, err error) {
	snap := finasync.NewSnapshot()
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT key, value, updated_at FROM "%s"
		WHERE app_name = ? AND user_id = ? AND session_id = ? AND key LIKE ?
	`, s.table), s.scope.App, s.scope.User, s.scope.Session, sessionPrefix+"%")
	if err != nil {
		return snap, fmt.Errorf("error querying session state: %w", err)
	}
	defer func() {
		if e := rows.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("error closing sql.Rows: %w", e))
		}
	}()

	for rows.Next() {
		var key, value, updated string
		if err = rows.Scan(&key, &value, &updated); err != nil {
			return snap, fmt.Errorf("sql rows scan error: %w", err)
		}
		c, ok := categoryOf(key)
		if !ok {
			continue
		}
		snap.Summaries[c] = value
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil && t.After(snap.LastUpdated) {
			snap.LastUpdated = t
		}
	}
	if err = rows.Err(); err != nil {
		return snap, fmt.Errorf("sql rows scan error: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
