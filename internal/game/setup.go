package game

import (
	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/randutil"
)

// New deals a fresh round for groupSize players.
//
// The deck is shuffled, the top card is withdrawn face down, three more are
// set aside when two play, every player is dealt one card in seat order and
// a randomly chosen starting player is dealt a second.
func New(groupSize int, src randutil.Source) (*State, error) {
	if groupSize < MinPlayers || groupSize > MaxPlayers {
		return nil, ruleErr(ErrInvalidGroupSize, "%d (want %d-%d)", groupSize, MinPlayers, MaxPlayers)
	}

	s := &State{
		seats: make([]seat, groupSize),
		deck:  deck.Full(),
		aside: deck.Pile{},
	}
	for i := range s.seats {
		s.seats[i] = seat{hand: deck.Pile{}, open: deck.Pile{}}
	}

	src.Shuffle(len(s.deck), func(i, j int) {
		s.deck[i], s.deck[j] = s.deck[j], s.deck[i]
	})

	s.withdrawn = s.mustDraw()

	if groupSize == 2 {
		for range asideCount {
			s.aside.Push(s.mustDraw())
		}
	}

	for i := range s.seats {
		s.seats[i].hand.Push(s.mustDraw())
	}

	starting := src.IntRange(1, groupSize)
	s.seat(starting).hand.Push(s.mustDraw())

	return s, nil
}

// Reset deals the next round for the same players, keeping chip counts.
func (s *State) Reset(src randutil.Source) error {
	next, err := New(len(s.seats), src)
	if err != nil {
		return err
	}
	for i := range s.seats {
		next.seats[i].chips = s.seats[i].chips
	}
	*s = *next
	return nil
}

// mustDraw is only used while dealing, where the deck cannot run out.
func (s *State) mustDraw() deck.Card {
	c, ok := s.deck.Draw()
	if !ok {
		panic("game: deck exhausted while dealing")
	}
	return c
}
