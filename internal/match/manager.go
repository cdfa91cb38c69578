package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/loveletter/internal/auth"
	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/gameid"
	"github.com/lox/loveletter/internal/randutil"
	"github.com/lox/loveletter/internal/store"
)

const (
	DefaultIdleTimeout   = 24 * time.Hour
	DefaultSweepInterval = time.Minute

	subscriberBuffer = 16
)

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for timestamps and the idle sweeper.
func WithClock(clock quartz.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithIdleTimeout sets how long a match may go untouched before Sweep
// removes it.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

// WithSweepInterval sets how often Run calls Sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(m *Manager) { m.sweepInterval = d }
}

// WithTurnHistory sets how many recent turns Status reports. Zero turns
// the history off.
func WithTurnHistory(n int) Option {
	return func(m *Manager) { m.turnHistory = n }
}

// WithSeeds sets where round seeds come from. Tests use it to deal known
// rounds.
func WithSeeds(next func() (int64, error)) Option {
	return func(m *Manager) { m.nextSeed = next }
}

// Manager owns the live matches.
type Manager struct {
	logger        *log.Logger
	store         store.Store
	clock         quartz.Clock
	idleTimeout   time.Duration
	sweepInterval time.Duration
	turnHistory   int
	nextSeed      func() (int64, error)

	mu      sync.RWMutex
	matches map[string]*Match

	subMu  sync.Mutex
	subs   map[string]map[int]chan Event
	nextID int
}

// NewManager returns a manager persisting through st. A nil st keeps
// matches in memory only.
func NewManager(logger *log.Logger, st store.Store, opts ...Option) *Manager {
	if st == nil {
		st = store.NewMemory()
	}
	m := &Manager{
		logger:        logger.WithPrefix("match"),
		store:         st,
		clock:         quartz.NewReal(),
		idleTimeout:   DefaultIdleTimeout,
		sweepInterval: DefaultSweepInterval,
		nextSeed:      randutil.NewSeed,
		matches:       make(map[string]*Match),
		subs:          make(map[string]map[int]chan Event),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a match for groupSize players and seats the creator as
// player 1.
func (m *Manager) Create(ctx context.Context, groupSize int) (Seat, error) {
	src, seed, err := m.source()
	if err != nil {
		return Seat{}, err
	}
	st, err := game.New(groupSize, src)
	if err != nil {
		return Seat{}, err
	}
	code, err := gameid.Generate()
	if err != nil {
		return Seat{}, err
	}

	mt := &Match{
		Code:      code,
		GroupSize: groupSize,
		seats:     auth.NewSeats(groupSize),
		state:     st,
		round:     1,
		history:   []game.Resolution{},
		updatedAt: m.clock.Now(),
	}
	player, token, err := mt.seats.Claim()
	if err != nil {
		return Seat{}, err
	}
	if err := m.store.Save(ctx, mt.record()); err != nil {
		return Seat{}, fmt.Errorf("save match: %w", err)
	}

	m.mu.Lock()
	m.matches[code] = mt
	m.mu.Unlock()

	m.logger.Info("Match created", "match", code, "players", groupSize, "seed", seed)
	return Seat{Code: code, Player: player, Token: token}, nil
}

// Join claims the lowest free seat.
func (m *Manager) Join(ctx context.Context, code string) (Seat, error) {
	mt, err := m.Get(ctx, code)
	if err != nil {
		return Seat{}, err
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	player, token, err := mt.seats.Claim()
	if errors.Is(err, auth.ErrNoFreeSeat) {
		return Seat{}, ErrMatchFull
	}
	if err != nil {
		return Seat{}, err
	}
	if err := m.commit(ctx, mt); err != nil {
		mt.seats[player-1] = ""
		return Seat{}, err
	}

	m.logger.Info("Player joined", "match", code, "player", player, "free", mt.seats.Free())
	m.publish(Event{Kind: EventJoined, Code: code, Revision: mt.revision, Player: player})
	return Seat{Code: code, Player: player, Token: token}, nil
}

// Authenticate resolves a seat token to its match and player.
func (m *Manager) Authenticate(ctx context.Context, code, token string) (*Match, int, error) {
	mt, err := m.Get(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	mt.mu.Lock()
	player, err := mt.seats.Player(token)
	mt.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}
	return mt, player, nil
}

// Result is the outcome of a turn played through the manager.
type Result struct {
	game.TurnResult
	Revision uint64
	// Resolution is set when the turn finished the round.
	Resolution *game.Resolution
	// MatchWinner is set once a player has collected enough chips.
	MatchWinner int
}

// Play applies a turn for player. revision must match the match's current
// revision so a client acting on an outdated table is refused. Rejected
// turns return the engine's error and change nothing.
func (m *Manager) Play(ctx context.Context, code string, player int, a game.Action, revision uint64) (Result, error) {
	mt, err := m.Get(ctx, code)
	if err != nil {
		return Result{}, err
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.winner != 0 {
		return Result{}, ErrMatchOver
	}
	if revision != mt.revision {
		return Result{}, fmt.Errorf("%w: have %d, match is at %d", ErrStaleRevision, revision, mt.revision)
	}

	a.Player = player
	before := mt.state.Clone()
	turn, err := mt.state.Play(a)
	if err != nil {
		return Result{}, err
	}

	res := Result{TurnResult: turn}
	if turn.RoundOver {
		resolution, err := m.conclude(mt)
		if err != nil {
			mt.state = before
			return Result{}, err
		}
		res.Resolution = resolution
	}
	mt.remember(a, m.turnHistory)

	if err := m.commit(ctx, mt); err != nil {
		mt.state = before
		if len(mt.recent) > 0 {
			mt.recent = mt.recent[:len(mt.recent)-1]
		}
		if res.Resolution != nil {
			mt.history = mt.history[:len(mt.history)-1]
			mt.winner = 0
		}
		return Result{}, err
	}
	res.Revision = mt.revision
	res.MatchWinner = mt.winner

	m.logger.Debug("Turn played", "match", code, "player", player, "card", a.Card, "target", a.Target, "revision", mt.revision)
	m.publish(Event{
		Kind:       EventTurn,
		Code:       code,
		Revision:   mt.revision,
		Player:     player,
		Action:     &a,
		Outcome:    &res.Outcome,
		Resolution: res.Resolution,
	})
	return res, nil
}

// conclude records the result of a finished round. It returns nil while the
// last drawn card is still to be played.
func (m *Manager) conclude(mt *Match) (*game.Resolution, error) {
	resolution, err := mt.state.Conclude()
	switch {
	case errors.Is(err, game.ErrRoundNotOver):
		return nil, nil
	case errors.Is(err, game.ErrCorruptState) && len(mt.state.Alive()) > 1:
		// Same hand card and same discards: nobody scores.
		m.logger.Warn("Round tied", "match", mt.Code, "round", mt.round, "error", err)
		resolution = game.Resolution{Reason: game.Tied}
	case err != nil:
		m.logger.Error("Round could not be resolved", "match", mt.Code, "round", mt.round, "error", err)
		return nil, err
	}

	mt.history = append(mt.history, resolution)
	mt.winner = matchWinner(mt.state, mt.GroupSize)

	m.logger.Info("Round over", "match", mt.Code, "round", mt.round, "winner", resolution.Winner, "reason", resolution.Reason)
	if mt.winner != 0 {
		m.logger.Info("Match won", "match", mt.Code, "player", mt.winner, "rounds", mt.round)
	}
	return &resolution, nil
}

// NextRound deals a new round once the current one is decided. Chips carry
// over.
func (m *Manager) NextRound(ctx context.Context, code string, player int) error {
	mt, err := m.Get(ctx, code)
	if err != nil {
		return err
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.winner != 0 {
		return ErrMatchOver
	}
	if !mt.roundConcluded() {
		return ErrRoundInProgress
	}

	src, seed, err := m.source()
	if err != nil {
		return err
	}
	before := mt.state.Clone()
	if err := mt.state.Reset(src); err != nil {
		return err
	}
	mt.round++
	recent := mt.recent
	mt.recent = nil
	if err := m.commit(ctx, mt); err != nil {
		mt.state = before
		mt.round--
		mt.recent = recent
		return err
	}

	m.logger.Info("Round dealt", "match", code, "round", mt.round, "by", player, "seed", seed)
	m.publish(Event{Kind: EventRound, Code: code, Revision: mt.revision, Player: player})
	return nil
}

// Get returns a live match, loading it from the store if it is not in
// memory.
func (m *Manager) Get(ctx context.Context, code string) (*Match, error) {
	m.mu.RLock()
	mt, ok := m.matches[code]
	m.mu.RUnlock()
	if ok {
		return mt, nil
	}

	rec, err := m.store.Load(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	loaded, err := fromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", code, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile.
	if mt, ok := m.matches[code]; ok {
		return mt, nil
	}
	m.matches[code] = loaded
	m.logger.Debug("Match loaded from store", "match", code, "revision", loaded.revision)
	return loaded, nil
}

// Len returns the number of matches held in memory.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}

// Sweep removes matches idle for longer than the idle timeout, from memory
// and from the store, and returns how many it removed.
func (m *Manager) Sweep(ctx context.Context) int {
	m.mu.Lock()
	var idle []string
	for code, mt := range m.matches {
		mt.mu.Lock()
		expired := m.clock.Since(mt.updatedAt) > m.idleTimeout
		mt.mu.Unlock()
		if expired {
			idle = append(idle, code)
			delete(m.matches, code)
		}
	}
	m.mu.Unlock()

	for _, code := range idle {
		if err := m.store.Delete(ctx, code); err != nil && !errors.Is(err, store.ErrNotFound) {
			m.logger.Error("Failed to delete idle match", "match", code, "error", err)
		}
		m.closeSubscribers(code)
	}
	if len(idle) > 0 {
		m.logger.Info("Swept idle matches", "count", len(idle))
	}
	return len(idle)
}

// Run sweeps idle matches every sweep interval until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	w := m.clock.TickerFunc(ctx, m.sweepInterval, func() error {
		m.Sweep(ctx)
		return nil
	}, "match", "sweep")
	err := w.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// commit bumps the revision and persists the match. Callers hold mt.mu.
func (m *Manager) commit(ctx context.Context, mt *Match) error {
	mt.revision++
	mt.updatedAt = m.clock.Now()
	if err := m.store.Save(ctx, mt.record()); err != nil {
		mt.revision--
		return fmt.Errorf("save match: %w", err)
	}
	return nil
}

func (m *Manager) source() (randutil.Source, int64, error) {
	seed, err := m.nextSeed()
	if err != nil {
		return nil, 0, fmt.Errorf("seed round: %w", err)
	}
	return randutil.New(seed), seed, nil
}
