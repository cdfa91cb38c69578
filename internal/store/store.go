// Package store persists matches between requests and across restarts.
//
// Three backends share one contract: Memory for tests and throwaway servers,
// File for a directory of JSON documents, and SQLite for a single database
// file whose game table mirrors the original web app's schema.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lox/loveletter/internal/game"
)

var (
	// ErrNotFound is returned by Load and Delete for an unknown code.
	ErrNotFound = errors.New("store: match not found")

	// ErrConflict is returned when a save would give a token to two matches.
	ErrConflict = errors.New("store: conflicting record")
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Record is one persisted match.
type Record struct {
	Code      string `json:"code"`
	GroupSize int    `json:"group_size"`
	// Tokens holds the seat tokens for players 1-4; unclaimed seats and
	// seats beyond the group size are empty.
	Tokens    [game.MaxPlayers]string `json:"tokens"`
	Revision  uint64                  `json:"revision"`
	Round     int                     `json:"round"`
	State     game.Snapshot           `json:"state"`
	History   []game.Resolution       `json:"history"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Store saves and loads match records. Save replaces any record with the
// same code.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, code string) (Record, error)
	Delete(ctx context.Context, code string) error
	Close() error
}

// Open returns the backend named by driver. path is the directory for the
// file driver and the database file for sqlite; memory ignores it.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		return OpenFile(path)
	case DriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func (r Record) validate() error {
	if r.Code == "" {
		return errors.New("store: record code is required")
	}
	if r.GroupSize < game.MinPlayers || r.GroupSize > game.MaxPlayers {
		return fmt.Errorf("store: invalid group size %d", r.GroupSize)
	}
	return nil
}
