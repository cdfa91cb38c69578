package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schemaSQL string

// SQLite stores matches in the game table of a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
// A path of ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	if path != ":memory:" {
		path = filepath.Clean(path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLite) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.validate(); err != nil {
		return err
	}
	state, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	history, err := json.Marshal(rec.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO game (
		   code, group_size, player1, player2, player3, player4,
		   state, history, revision, round, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		   group_size = excluded.group_size,
		   player1 = excluded.player1,
		   player2 = excluded.player2,
		   player3 = excluded.player3,
		   player4 = excluded.player4,
		   state = excluded.state,
		   history = excluded.history,
		   revision = excluded.revision,
		   round = excluded.round,
		   updated_at = excluded.updated_at`,
		rec.Code,
		rec.GroupSize,
		nullable(rec.Tokens[0]),
		nullable(rec.Tokens[1]),
		nullable(rec.Tokens[2]),
		nullable(rec.Tokens[3]),
		string(state),
		string(history),
		int64(rec.Revision),
		rec.Round,
		updated.UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return fmt.Errorf("save %s: %w", rec.Code, err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, code string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	var (
		rec            Record
		players        [4]sql.NullString
		state, history string
		revision       int64
		updated        int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT code, group_size, player1, player2, player3, player4,
		        state, history, revision, round, updated_at
		   FROM game WHERE code = ?`, code,
	).Scan(
		&rec.Code, &rec.GroupSize,
		&players[0], &players[1], &players[2], &players[3],
		&state, &history, &revision, &rec.Round, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load %s: %w", code, err)
	}

	for i, p := range players {
		rec.Tokens[i] = p.String
	}
	if err := json.Unmarshal([]byte(state), &rec.State); err != nil {
		return Record{}, fmt.Errorf("decode state: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
		return Record{}, fmt.Errorf("decode history: %w", err)
	}
	rec.Revision = uint64(revision)
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, nil
}

func (s *SQLite) Delete(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM game WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("delete %s: %w", code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", code, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
