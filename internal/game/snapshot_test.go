package game

import (
	"encoding/json"
	"testing"

	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotJSON(t *testing.T) {
	s, err := New(3, randutil.New(1))
	require.NoError(t, err)

	_, err = s.Play(Action{Player: 1, Card: deck.Baron, Target: 3})
	require.NoError(t, err)

	data, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	lastTurn := raw["last_turn"].(map[string]any)
	assert.Equal(t, float64(3), lastTurn["target"])
	assert.Nil(t, lastTurn["guess"])
	assert.Contains(t, lastTurn, "guess")
	assert.Equal(t, float64(deck.Priest), raw["withdrawn"])
	assert.Equal(t, []any{}, raw["aside"])
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, err := New(2, randutil.New(5))
	require.NoError(t, err)
	_, err = s.Play(Action{Player: 1, Card: deck.Guard, Target: 2, Guess: deck.Prince})
	require.NoError(t, err)

	data, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	restored, err := FromSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Equal(t, s.View(1), restored.View(1))
}

func TestSnapshotIsIndependent(t *testing.T) {
	s, err := New(4, randutil.New(2))
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Hands[2][0] = deck.Princess
	snap.Deck[0] = deck.Princess

	assert.Equal(t, pile(7, 8), s.Hand(2))
	assert.Equal(t, deck.Handmaid, s.Deck()[0])
}

func TestFromSnapshotRejectsCorruptState(t *testing.T) {
	base := func(t *testing.T) Snapshot {
		s, err := New(3, randutil.New(1))
		require.NoError(t, err)
		return s.Snapshot()
	}

	tests := []struct {
		name   string
		mutate func(*Snapshot)
		target error
	}{
		{"group size", func(s *Snapshot) { s.GroupSize = 5 }, ErrInvalidGroupSize},
		{"missing card", func(s *Snapshot) { s.Deck = s.Deck[1:] }, ErrCorruptState},
		{"duplicated princess", func(s *Snapshot) { s.Deck[0] = deck.Princess }, ErrCorruptState},
		{"invalid card", func(s *Snapshot) { s.Deck[0] = 12 }, ErrCorruptState},
		{"two active players", func(s *Snapshot) {
			s.Hands[2] = append(s.Hands[2], s.Deck[0])
			s.Deck = s.Deck[1:]
		}, ErrMultipleActive},
		{"unexpected aside pile", func(s *Snapshot) {
			s.Aside = s.Deck[:3].Clone()
			s.Deck = s.Deck[3:]
		}, ErrCorruptState},
		{"extra seat", func(s *Snapshot) { s.Hands[4] = deck.Pile{} }, ErrCorruptState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := base(t)
			tt.mutate(&snap)
			_, err := FromSnapshot(snap)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestTurnRecord(t *testing.T) {
	a := Action{Player: 2, Card: deck.Handmaid}
	r := NewTurnRecord(a)
	assert.Nil(t, r.Target)
	assert.Nil(t, r.Guess)
	assert.Equal(t, a, r.Action())

	a = Action{Player: 1, Card: deck.Guard, Target: 3, Guess: deck.Countess}
	assert.Equal(t, a, NewTurnRecord(a).Action())
}
