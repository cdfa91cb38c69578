package game

import (
	"errors"
	"testing"

	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegalCardsForcedCountess(t *testing.T) {
	tests := []struct {
		name string
		hand deck.Pile
		want []deck.Card
	}{
		{"countess with prince", pile(deck.Prince, deck.Countess), []deck.Card{deck.Countess}},
		{"countess with king", pile(deck.Countess, deck.King), []deck.Card{deck.Countess}},
		{"countess with guard", pile(deck.Countess, deck.Guard), []deck.Card{deck.Countess, deck.Guard}},
		{"pair of guards", pile(deck.Guard, deck.Guard), []deck.Card{deck.Guard}},
		{"prince and king", pile(deck.Prince, deck.King), []deck.Card{deck.Prince, deck.King}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := table{hands: []deck.Pile{tt.hand, pile(deck.Guard)}, deck: pile(deck.Baron)}.build()
			assert.Equal(t, tt.want, s.LegalCards(1))
		})
	}
}

func TestValidateForcedCountess(t *testing.T) {
	s := table{hands: []deck.Pile{pile(deck.Prince, deck.Countess), pile(deck.Guard)}, deck: pile(deck.Baron)}.build()

	err := s.Validate(Action{Player: 1, Card: deck.Prince, Target: 2})
	assert.ErrorIs(t, err, ErrIllegalCard)
	assert.Contains(t, err.Error(), "Countess must be played")

	assert.NoError(t, s.Validate(Action{Player: 1, Card: deck.Countess}))
}

func TestValidateTurnOwnership(t *testing.T) {
	s, err := New(3, randutil.New(1))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Validate(Action{Player: 2, Card: deck.Handmaid}), ErrNotPlayersTurn)
	assert.ErrorIs(t, s.Validate(Action{Player: 0, Card: deck.Guard}), ErrUnknownPlayer)
	assert.ErrorIs(t, s.Validate(Action{Player: 4, Card: deck.Guard}), ErrUnknownPlayer)
	assert.NoError(t, s.Validate(Action{Player: 1, Card: deck.Baron, Target: 2}))
}

func TestValidateActiveInvariants(t *testing.T) {
	t.Run("two players hold two cards", func(t *testing.T) {
		s := table{hands: []deck.Pile{pile(1, 2), pile(3, 4)}, deck: pile(5)}.build()
		err := s.Validate(Action{Player: 1, Card: deck.Guard, Target: 2, Guess: deck.Baron})
		assert.ErrorIs(t, err, ErrMultipleActive)
		assert.True(t, IsInvariant(err))
	})

	t.Run("nobody to play mid-round", func(t *testing.T) {
		s := table{hands: []deck.Pile{pile(1), pile(3)}, deck: pile(5)}.build()
		err := s.Validate(Action{Player: 1, Card: deck.Guard, Target: 2, Guess: deck.Baron})
		assert.ErrorIs(t, err, ErrNoActivePlayer)
		assert.True(t, IsInvariant(err))
	})

	t.Run("round already over", func(t *testing.T) {
		s := table{hands: []deck.Pile{pile(1), pile(3)}}.build()
		err := s.Validate(Action{Player: 1, Card: deck.Guard, Target: 2, Guess: deck.Baron})
		assert.ErrorIs(t, err, ErrRoundOver)
		assert.False(t, IsInvariant(err))
	})
}

func TestValidateCardInHand(t *testing.T) {
	s := table{hands: []deck.Pile{pile(deck.Guard, deck.Priest), pile(deck.Baron)}, deck: pile(deck.King)}.build()
	err := s.Validate(Action{Player: 1, Card: deck.Princess})
	assert.ErrorIs(t, err, ErrIllegalCard)
	assert.ErrorIs(t, s.Validate(Action{Player: 1, Card: deck.None}), ErrIllegalCard)
}

func TestValidateTargets(t *testing.T) {
	// Player 3 is protected, player 4 is out.
	base := table{
		hands: []deck.Pile{
			pile(deck.Guard, deck.Prince),
			pile(deck.Baron),
			pile(deck.Priest),
			{},
		},
		open:   []deck.Pile{nil, nil, pile(deck.Handmaid), pile(deck.Princess)},
		immune: []int{3},
		deck:   pile(deck.King),
	}

	tests := []struct {
		name   string
		action Action
		want   error
	}{
		{"guard at opponent", Action{Player: 1, Card: deck.Guard, Target: 2, Guess: deck.Baron}, nil},
		{"guard at self", Action{Player: 1, Card: deck.Guard, Target: 1, Guess: deck.Baron}, ErrIllegalTarget},
		{"guard at protected", Action{Player: 1, Card: deck.Guard, Target: 3, Guess: deck.Baron}, ErrIllegalTarget},
		{"guard at eliminated", Action{Player: 1, Card: deck.Guard, Target: 4, Guess: deck.Baron}, ErrIllegalTarget},
		{"guard without target", Action{Player: 1, Card: deck.Guard, Guess: deck.Baron}, ErrIllegalTarget},
		{"guard at unknown seat", Action{Player: 1, Card: deck.Guard, Target: 7, Guess: deck.Baron}, ErrIllegalTarget},
		{"prince at self", Action{Player: 1, Card: deck.Prince, Target: 1}, nil},
		{"prince at opponent", Action{Player: 1, Card: deck.Prince, Target: 2}, nil},
		{"prince at protected", Action{Player: 1, Card: deck.Prince, Target: 3}, ErrIllegalTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base.build()
			err := s.Validate(tt.action)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	s := base.build()
	assert.Equal(t, []int{2}, s.Targets(1, deck.Guard))
	assert.Equal(t, []int{1, 2}, s.Targets(1, deck.Prince))
	assert.Nil(t, s.Targets(1, deck.Handmaid))
}

func TestValidateUntargetedCards(t *testing.T) {
	for _, card := range []deck.Card{deck.Handmaid, deck.Countess, deck.Princess} {
		t.Run(card.String(), func(t *testing.T) {
			s := table{hands: []deck.Pile{pile(card, deck.Guard), pile(deck.Baron)}, deck: pile(deck.King)}.build()
			assert.NoError(t, s.Validate(Action{Player: 1, Card: card}))
			assert.ErrorIs(t, s.Validate(Action{Player: 1, Card: card, Target: 2}), ErrIllegalTarget)
		})
	}
}

func TestValidateEveryoneProtected(t *testing.T) {
	s := table{
		hands:  []deck.Pile{pile(deck.Guard, deck.King), pile(deck.Baron), pile(deck.Priest)},
		immune: []int{2, 3},
		deck:   pile(deck.Prince),
	}.build()

	assert.Empty(t, s.Targets(1, deck.King))
	assert.NoError(t, s.Validate(Action{Player: 1, Card: deck.King}))
	assert.ErrorIs(t, s.Validate(Action{Player: 1, Card: deck.King, Target: 2}), ErrIllegalTarget)
	assert.NoError(t, s.Validate(Action{Player: 1, Card: deck.Guard, Guess: deck.Baron}))
}

func TestValidateGuess(t *testing.T) {
	s := table{hands: []deck.Pile{pile(deck.Guard, deck.Priest), pile(deck.Baron)}, deck: pile(deck.King)}.build()

	for _, guess := range deck.Ranks[1:] {
		assert.NoError(t, s.Validate(Action{Player: 1, Card: deck.Guard, Target: 2, Guess: guess}), "guess %v", guess)
	}
	assert.ErrorIs(t, s.Validate(Action{Player: 1, Card: deck.Guard, Target: 2, Guess: deck.Guard}), ErrIllegalGuess)
	assert.ErrorIs(t, s.Validate(Action{Player: 1, Card: deck.Guard, Target: 2}), ErrIllegalGuess)
	assert.ErrorIs(t, s.Validate(Action{Player: 1, Card: deck.Guard, Target: 2, Guess: 9}), ErrIllegalGuess)
	assert.ErrorIs(t, s.Validate(Action{Player: 1, Card: deck.Priest, Target: 2, Guess: deck.Baron}), ErrIllegalGuess)
}

func TestValidateDoesNotMutate(t *testing.T) {
	s, err := New(4, randutil.New(9))
	require.NoError(t, err)
	before := s.Snapshot()

	active := s.Active()
	for _, a := range []Action{
		{Player: active, Card: deck.Princess, Target: 1},
		{Player: active%4 + 1, Card: deck.Guard},
		{Player: active, Card: deck.Guard, Target: active, Guess: deck.Guard},
	} {
		_, err := s.Play(a)
		require.Error(t, err)
		var ruleErr *RuleError
		require.True(t, errors.As(err, &ruleErr), "%v", err)
	}
	assert.Equal(t, before, s.Snapshot())
}

func TestLegalActionsAllValidate(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		s, err := New(3, randutil.New(seed))
		require.NoError(t, err)
		actions := s.LegalActions()
		require.NotEmpty(t, actions)
		for _, a := range actions {
			require.NoError(t, s.Validate(a), "seed %d action %+v", seed, a)
		}
	}

	over := table{hands: []deck.Pile{pile(1), pile(3)}}.build()
	assert.Nil(t, over.LegalActions())
}
