// Package match turns single rounds of the engine into multi-round matches
// that players join with a code and act in with a seat token. A Manager
// keeps live matches in memory, persists every change through a store and
// fans changes out to subscribers.
package match

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/lox/loveletter/internal/auth"
	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/store"
)

var (
	ErrNotFound        = errors.New("match: not found")
	ErrMatchFull       = errors.New("match: no free seat")
	ErrStaleRevision   = errors.New("match: stale revision")
	ErrRoundInProgress = errors.New("match: round in progress")
	ErrMatchOver       = errors.New("match: match is over")
)

// TokensToWin returns the chips a player needs to win a match.
func TokensToWin(groupSize int) int {
	switch groupSize {
	case 2:
		return 7
	case 3:
		return 5
	default:
		return 4
	}
}

// Seat is the credential handed to a player when they create or join.
type Seat struct {
	Code   string `json:"code"`
	Player int    `json:"player"`
	Token  string `json:"token"`
}

// Match is one live match. All fields behind mu change together so that a
// revision always names a single consistent table.
type Match struct {
	Code      string
	GroupSize int

	mu        sync.Mutex
	seats     auth.Seats
	state     *game.State
	revision  uint64
	round     int
	history   []game.Resolution
	winner    int
	updatedAt time.Time
	// recent holds the latest turns of the current round, oldest first.
	recent []game.TurnRecord
}

// Status is a player's picture of a match.
type Status struct {
	Code        string            `json:"code"`
	Revision    uint64            `json:"revision"`
	Round       int               `json:"round"`
	Seated      int               `json:"seated"`
	TokensToWin int               `json:"tokens_to_win"`
	History     []game.Resolution `json:"history"`
	Winner      int               `json:"winner"`
	Recent      []game.TurnRecord `json:"recent,omitempty"`
	View        game.View         `json:"view"`
}

// Status returns what player may see. Player 0 gets a spectator view.
func (m *Match) Status(player int) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked(player)
}

func (m *Match) statusLocked(player int) Status {
	return Status{
		Code:        m.Code,
		Revision:    m.revision,
		Round:       m.round,
		Seated:      len(m.seats) - m.seats.Free(),
		TokensToWin: TokensToWin(m.GroupSize),
		History:     append([]game.Resolution{}, m.history...),
		Winner:      m.winner,
		Recent:      slices.Clone(m.recent),
		View:        m.state.View(player),
	}
}

// Revision returns the current revision.
func (m *Match) Revision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// Snapshot returns the full engine state.
func (m *Match) Snapshot() game.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Snapshot()
}

// remember appends a to the recent turns, keeping at most limit.
func (m *Match) remember(a game.Action, limit int) {
	if limit <= 0 {
		return
	}
	m.recent = append(m.recent, *game.NewTurnRecord(a))
	if over := len(m.recent) - limit; over > 0 {
		m.recent = slices.Delete(m.recent, 0, over)
	}
}

// roundConcluded reports whether the current round has a recorded result.
func (m *Match) roundConcluded() bool {
	return len(m.history) >= m.round
}

func (m *Match) record() store.Record {
	rec := store.Record{
		Code:      m.Code,
		GroupSize: m.GroupSize,
		Revision:  m.revision,
		Round:     m.round,
		State:     m.state.Snapshot(),
		History:   append([]game.Resolution{}, m.history...),
		UpdatedAt: m.updatedAt,
	}
	copy(rec.Tokens[:], m.seats)
	return rec
}

func fromRecord(rec store.Record) (*Match, error) {
	st, err := game.FromSnapshot(rec.State)
	if err != nil {
		return nil, err
	}
	m := &Match{
		Code:      rec.Code,
		GroupSize: rec.GroupSize,
		seats:     auth.NewSeats(rec.GroupSize),
		state:     st,
		revision:  rec.Revision,
		round:     rec.Round,
		history:   append([]game.Resolution{}, rec.History...),
		updatedAt: rec.UpdatedAt,
	}
	copy(m.seats, rec.Tokens[:rec.GroupSize])
	m.winner = matchWinner(st, rec.GroupSize)
	return m, nil
}

// matchWinner returns the first player holding enough chips, or 0.
func matchWinner(st *game.State, groupSize int) int {
	need := TokensToWin(groupSize)
	for p := 1; p <= groupSize; p++ {
		if st.Chips(p) >= need {
			return p
		}
	}
	return 0
}
