package match

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/loveletter/internal/auth"
	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/gameid"
	"github.com/lox/loveletter/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func fixedSeed(seed int64) Option {
	return WithSeeds(func() (int64, error) { return seed, nil })
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *store.Memory, *quartz.Mock) {
	t.Helper()
	mem := store.NewMemory()
	clock := quartz.NewMock(t)
	opts = append([]Option{WithClock(clock), fixedSeed(1)}, opts...)
	return NewManager(testLogger(), mem, opts...), mem, clock
}

// fullMatch creates a three player match dealt from seed 1:
// player 1 holds Guard and Baron, player 2 a Handmaid, player 3 a Guard.
func fullMatch(t *testing.T, m *Manager) []Seat {
	t.Helper()
	ctx := context.Background()

	first, err := m.Create(ctx, 3)
	require.NoError(t, err)
	seats := []Seat{first}
	for range 2 {
		s, err := m.Join(ctx, first.Code)
		require.NoError(t, err)
		seats = append(seats, s)
	}
	return seats
}

// playShortRound plays the two turns that end a seed 1 round with player 3
// the last one standing.
func playShortRound(t *testing.T, m *Manager, code string) Result {
	t.Helper()
	ctx := context.Background()
	mt, err := m.Get(ctx, code)
	require.NoError(t, err)

	_, err = m.Play(ctx, code, 1, game.Action{Card: deck.Guard, Target: 2, Guess: deck.Handmaid}, mt.Revision())
	require.NoError(t, err)
	res, err := m.Play(ctx, code, 3, game.Action{Card: deck.Guard, Target: 1, Guess: deck.Baron}, mt.Revision())
	require.NoError(t, err)
	return res
}

func TestTokensToWin(t *testing.T) {
	assert.Equal(t, 7, TokensToWin(2))
	assert.Equal(t, 5, TokensToWin(3))
	assert.Equal(t, 4, TokensToWin(4))
}

func TestCreateAndJoin(t *testing.T) {
	m, mem, _ := newTestManager(t)
	ctx := context.Background()

	first, err := m.Create(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Player)
	assert.NoError(t, gameid.Validate(first.Code))
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, 1, mem.Len())

	mt, err := m.Get(ctx, first.Code)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), mt.Revision())
	assert.Equal(t, 1, mt.Status(0).Seated)

	for want := 2; want <= 3; want++ {
		seat, err := m.Join(ctx, first.Code)
		require.NoError(t, err)
		assert.Equal(t, want, seat.Player)
		assert.NotEqual(t, first.Token, seat.Token)
	}

	_, err = m.Join(ctx, first.Code)
	assert.ErrorIs(t, err, ErrMatchFull)

	status := mt.Status(2)
	assert.Equal(t, 3, status.Seated)
	assert.Equal(t, uint64(2), status.Revision)
	assert.Equal(t, 5, status.TokensToWin)
	assert.Equal(t, 1, status.Round)

	rec, err := mem.Load(ctx, first.Code)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rec.Revision)
	assert.NotEmpty(t, rec.Tokens[2])
	assert.Empty(t, rec.Tokens[3])
}

func TestCreateInvalidGroupSize(t *testing.T) {
	m, mem, _ := newTestManager(t)

	_, err := m.Create(context.Background(), 5)
	assert.ErrorIs(t, err, game.ErrInvalidGroupSize)
	assert.Zero(t, mem.Len())
}

func TestJoinUnknownMatch(t *testing.T) {
	m, _, _ := newTestManager(t)
	code, err := gameid.Generate()
	require.NoError(t, err)

	_, err = m.Join(context.Background(), code)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	m, _, _ := newTestManager(t)
	seats := fullMatch(t, m)
	ctx := context.Background()

	for _, seat := range seats {
		mt, player, err := m.Authenticate(ctx, seat.Code, seat.Token)
		require.NoError(t, err)
		assert.Equal(t, seat.Player, player)
		assert.Equal(t, seat.Code, mt.Code)
	}

	_, _, err := m.Authenticate(ctx, seats[0].Code, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	other, err := gameid.Generate()
	require.NoError(t, err)
	_, _, err = m.Authenticate(ctx, other, seats[0].Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlayChecksRevision(t *testing.T) {
	m, _, _ := newTestManager(t)
	seats := fullMatch(t, m)
	ctx := context.Background()
	code := seats[0].Code

	mt, err := m.Get(ctx, code)
	require.NoError(t, err)
	rev := mt.Revision()
	before := mt.Snapshot()

	_, err = m.Play(ctx, code, 1, game.Action{Card: deck.Baron, Target: 3}, rev-1)
	assert.ErrorIs(t, err, ErrStaleRevision)
	assert.Equal(t, before, mt.Snapshot())

	res, err := m.Play(ctx, code, 1, game.Action{Card: deck.Baron, Target: 3}, rev)
	require.NoError(t, err)
	assert.Equal(t, rev+1, res.Revision)
	assert.Equal(t, 2, res.Next)
	assert.Nil(t, res.Resolution)

	// The old revision is now stale even though it was valid a moment ago.
	_, err = m.Play(ctx, code, 2, game.Action{Card: deck.Handmaid}, rev)
	assert.ErrorIs(t, err, ErrStaleRevision)
}

func TestPlayRuleErrorChangesNothing(t *testing.T) {
	m, mem, _ := newTestManager(t)
	seats := fullMatch(t, m)
	ctx := context.Background()
	code := seats[0].Code

	mt, err := m.Get(ctx, code)
	require.NoError(t, err)
	rev := mt.Revision()
	before := mt.Snapshot()

	tests := []struct {
		name   string
		player int
		action game.Action
		target error
	}{
		{"not their turn", 2, game.Action{Card: deck.Handmaid}, game.ErrNotPlayersTurn},
		{"card not held", 1, game.Action{Card: deck.Princess}, game.ErrIllegalCard},
		{"bad guess", 1, game.Action{Card: deck.Guard, Target: 2, Guess: deck.Guard}, game.ErrIllegalGuess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Play(ctx, code, tt.player, tt.action, rev)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, rev, mt.Revision())
			assert.Equal(t, before, mt.Snapshot())
		})
	}

	rec, err := mem.Load(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, rev, rec.Revision)
}

func TestPlayPlayerIsTakenFromSeat(t *testing.T) {
	m, _, _ := newTestManager(t)
	seats := fullMatch(t, m)
	ctx := context.Background()

	mt, err := m.Get(ctx, seats[0].Code)
	require.NoError(t, err)

	// A forged Player field is ignored in favour of the authenticated seat.
	_, err = m.Play(ctx, seats[0].Code, 2, game.Action{Player: 1, Card: deck.Baron, Target: 3}, mt.Revision())
	assert.ErrorIs(t, err, game.ErrNotPlayersTurn)
}

func TestRoundOverAndNextRound(t *testing.T) {
	m, mem, _ := newTestManager(t)
	seats := fullMatch(t, m)
	ctx := context.Background()
	code := seats[0].Code

	err := m.NextRound(ctx, code, 1)
	assert.ErrorIs(t, err, ErrRoundInProgress)

	res := playShortRound(t, m, code)
	require.NotNil(t, res.Resolution)
	assert.Equal(t, game.Resolution{Winner: 3, Reason: game.LastStanding}, *res.Resolution)
	assert.True(t, res.RoundOver)
	assert.Zero(t, res.MatchWinner)

	mt, err := m.Get(ctx, code)
	require.NoError(t, err)
	status := mt.Status(3)
	assert.Equal(t, []game.Resolution{{Winner: 3, Reason: game.LastStanding}}, status.History)
	assert.Equal(t, 1, status.View.Chips[3])
	assert.True(t, status.View.RoundOver)

	_, err = m.Play(ctx, code, 3, game.Action{Card: deck.Guard}, mt.Revision())
	assert.ErrorIs(t, err, game.ErrRoundOver)

	require.NoError(t, m.NextRound(ctx, code, 2))
	status = mt.Status(0)
	assert.Equal(t, 2, status.Round)
	assert.False(t, status.View.RoundOver)
	assert.Equal(t, 1, status.View.Chips[3])
	assert.Equal(t, 1, status.View.Active)

	rec, err := mem.Load(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Round)
	assert.Len(t, rec.History, 1)

	assert.ErrorIs(t, m.NextRound(ctx, code, 2), ErrRoundInProgress)
}

func TestMatchWinner(t *testing.T) {
	m, _, _ := newTestManager(t)
	seats := fullMatch(t, m)
	ctx := context.Background()
	code := seats[0].Code

	var res Result
	for round := 1; round <= TokensToWin(3); round++ {
		if round > 1 {
			require.NoError(t, m.NextRound(ctx, code, 1))
		}
		res = playShortRound(t, m, code)
	}
	assert.Equal(t, 3, res.MatchWinner)

	mt, err := m.Get(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, 3, mt.Status(1).Winner)

	assert.ErrorIs(t, m.NextRound(ctx, code, 1), ErrMatchOver)
	_, err = m.Play(ctx, code, 1, game.Action{Card: deck.Guard}, mt.Revision())
	assert.ErrorIs(t, err, ErrMatchOver)
}

// tiedRecord is a two player table where player 1's last card leaves both
// players holding a Prince with discards totalling 11 each.
func tiedRecord(t *testing.T) store.Record {
	t.Helper()
	withdrawn := deck.Guard
	snap := game.Snapshot{
		GroupSize: 2,
		Deck:      deck.Pile{},
		Hands:     map[int]deck.Pile{1: {deck.Guard, deck.Prince}, 2: {deck.Prince}},
		Open: map[int]deck.Pile{
			1: {deck.Handmaid, deck.Baron, deck.Priest, deck.Guard},
			2: {deck.Guard, deck.Guard, deck.Priest, deck.Baron, deck.Handmaid},
		},
		Aside:     deck.Pile{deck.King, deck.Countess, deck.Princess},
		Chips:     map[int]int{1: 2, 2: 3},
		Immune:    map[int]bool{},
		Withdrawn: &withdrawn,
	}
	_, err := game.FromSnapshot(snap)
	require.NoError(t, err)

	code, err := gameid.Generate()
	require.NoError(t, err)
	rec := store.Record{
		Code:      code,
		GroupSize: 2,
		Revision:  40,
		Round:     6,
		State:     snap,
		History:   make([]game.Resolution, 5),
	}
	rec.Tokens[0], rec.Tokens[1] = "token-1", "token-2"
	return rec
}

func TestTiedRoundScoresNobody(t *testing.T) {
	m, mem, _ := newTestManager(t)
	ctx := context.Background()
	rec := tiedRecord(t)
	require.NoError(t, mem.Save(ctx, rec))

	res, err := m.Play(ctx, rec.Code, 1, game.Action{Card: deck.Guard, Target: 2, Guess: deck.Priest}, rec.Revision)
	require.NoError(t, err)
	require.NotNil(t, res.Resolution)
	assert.Equal(t, game.Resolution{Reason: game.Tied}, *res.Resolution)

	mt, err := m.Get(ctx, rec.Code)
	require.NoError(t, err)
	status := mt.Status(0)
	assert.Equal(t, 2, status.View.Chips[1])
	assert.Equal(t, 3, status.View.Chips[2])
	assert.Len(t, status.History, 6)

	require.NoError(t, m.NextRound(ctx, rec.Code, 1))
}

func TestGetLoadsFromStore(t *testing.T) {
	mem := store.NewMemory()
	first := NewManager(testLogger(), mem, fixedSeed(1))
	seats := fullMatch(t, first)
	ctx := context.Background()
	code := seats[0].Code

	mt, err := first.Get(ctx, code)
	require.NoError(t, err)
	_, err = first.Play(ctx, code, 1, game.Action{Card: deck.Baron, Target: 3}, mt.Revision())
	require.NoError(t, err)

	second := NewManager(testLogger(), mem)
	assert.Zero(t, second.Len())

	loaded, player, err := second.Authenticate(ctx, code, seats[1].Token)
	require.NoError(t, err)
	assert.Equal(t, 2, player)
	assert.Equal(t, 1, second.Len())
	assert.Equal(t, mt.Snapshot(), loaded.Snapshot())
	assert.Equal(t, mt.Status(2), loaded.Status(2))

	_, err = second.Play(ctx, code, 2, game.Action{Card: deck.Handmaid}, loaded.Revision())
	require.NoError(t, err)
}

func TestSweep(t *testing.T) {
	m, mem, clock := newTestManager(t, WithIdleTimeout(time.Hour))
	ctx := context.Background()

	stale, err := m.Create(ctx, 2)
	require.NoError(t, err)
	events, _ := m.Subscribe(stale.Code)

	clock.Advance(45 * time.Minute).MustWait(ctx)
	fresh, err := m.Create(ctx, 2)
	require.NoError(t, err)

	assert.Zero(t, m.Sweep(ctx))

	clock.Advance(30 * time.Minute).MustWait(ctx)
	assert.Equal(t, 1, m.Sweep(ctx))

	_, err = m.Get(ctx, stale.Code)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mem.Load(ctx, stale.Code)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, ok := <-events
	assert.False(t, ok, "subscribers of a swept match are closed")

	_, err = m.Get(ctx, fresh.Code)
	assert.NoError(t, err)
}

func TestSweepCountsActivity(t *testing.T) {
	m, _, clock := newTestManager(t, WithIdleTimeout(time.Hour))
	ctx := context.Background()

	seat, err := m.Create(ctx, 2)
	require.NoError(t, err)

	clock.Advance(50 * time.Minute).MustWait(ctx)
	_, err = m.Join(ctx, seat.Code)
	require.NoError(t, err)

	clock.Advance(50 * time.Minute).MustWait(ctx)
	assert.Zero(t, m.Sweep(ctx))
}

func TestRunStopsOnCancel(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSubscribe(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	first, err := m.Create(ctx, 3)
	require.NoError(t, err)
	events, cancel := m.Subscribe(first.Code)

	_, err = m.Join(ctx, first.Code)
	require.NoError(t, err)
	ev := <-events
	assert.Equal(t, EventJoined, ev.Kind)
	assert.Equal(t, 2, ev.Player)
	assert.Equal(t, uint64(1), ev.Revision)

	_, err = m.Join(ctx, first.Code)
	require.NoError(t, err)
	<-events

	_, err = m.Play(ctx, first.Code, 1, game.Action{Card: deck.Guard, Target: 2, Guess: deck.Handmaid}, 2)
	require.NoError(t, err)
	ev = <-events
	assert.Equal(t, EventTurn, ev.Kind)
	require.NotNil(t, ev.Action)
	assert.Equal(t, deck.Guard, ev.Action.Card)
	require.NotNil(t, ev.Outcome)
	assert.True(t, ev.Outcome.Hit)
	assert.Nil(t, ev.Resolution)

	cancel()
	_, ok := <-events
	assert.False(t, ok)
	cancel()
}

func TestTurnHistory(t *testing.T) {
	m, _, _ := newTestManager(t, WithTurnHistory(1))
	seats := fullMatch(t, m)
	ctx := context.Background()
	code := seats[0].Code

	mt, err := m.Get(ctx, code)
	require.NoError(t, err)
	assert.Empty(t, mt.Status(1).Recent)

	playShortRound(t, m, code)
	recent := mt.Status(2).Recent
	require.Len(t, recent, 1)
	assert.Equal(t, game.Action{Player: 3, Card: deck.Guard, Target: 1, Guess: deck.Baron}, recent[0].Action())

	require.NoError(t, m.NextRound(ctx, code, 1))
	assert.Empty(t, mt.Status(1).Recent)
}
