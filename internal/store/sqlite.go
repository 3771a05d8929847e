package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/moolen/fitaura/internal/agent"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id    TEXT PRIMARY KEY,
	attributes TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     TEXT NOT NULL,
	run_id      TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	message     TEXT NOT NULL,
	response    TEXT NOT NULL,
	agents_used TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_turns_user ON turns(user_id, id);
`

// SQLite is a durable Store backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path. The special
// path ":memory:" keeps everything in one private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("store: create data dir: %w", err)
			}
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Get implements ProfileStore.
func (s *SQLite) Get(ctx context.Context, userID string) (agent.Profile, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT attributes FROM profiles WHERE user_id = ?`, userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return agent.Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get profile: %w", err)
	}

	profile := agent.Profile{}
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("store: decode profile %q: %w", userID, err)
	}
	return profile, nil
}

// Put implements ProfileStore.
func (s *SQLite) Put(ctx context.Context, userID string, profile agent.Profile) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if profile == nil {
		profile = agent.Profile{}
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("store: encode profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, attributes, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			attributes = excluded.attributes,
			updated_at = excluded.updated_at`,
		userID, string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store: put profile: %w", err)
	}
	return nil
}

// AppendTurn implements HistoryStore.
func (s *SQLite) AppendTurn(ctx context.Context, userID string, turn Turn) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	agents := turn.AgentsUsed
	if agents == nil {
		agents = []string{}
	}
	rawAgents, err := json.Marshal(agents)
	if err != nil {
		return fmt.Errorf("store: encode agents: %w", err)
	}
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO turns (user_id, run_id, created_at, message, response, agents_used)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, turn.RunID, ts.UTC().Format(time.RFC3339Nano), turn.Message, turn.Response, string(rawAgents),
	)
	if err != nil {
		return fmt.Errorf("store: append turn: %w", err)
	}
	return nil
}

// History implements HistoryStore.
func (s *SQLite) History(ctx context.Context, userID string, limit int) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, created_at, message, response, agents_used
		FROM turns
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		userID, NormalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var (
			t                Turn
			created, rawJSON string
		)
		if err := rows.Scan(&t.RunID, &created, &t.Message, &t.Response, &rawJSON); err != nil {
			return nil, fmt.Errorf("store: scan turn: %w", err)
		}
		if t.Timestamp, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("store: parse turn timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(rawJSON), &t.AgentsUsed); err != nil {
			return nil, fmt.Errorf("store: decode agents: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate history: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
