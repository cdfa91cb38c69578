package game

import (
	"github.com/lox/loveletter/internal/deck"
)

// table describes a hand-built state for effect tests. Card conservation is
// not enforced; the tests that rely on it deal with New.
type table struct {
	hands     []deck.Pile
	open      []deck.Pile
	deck      deck.Pile
	aside     deck.Pile
	withdrawn deck.Card
	immune    []int
	chips     []int
}

func (tb table) build() *State {
	s := &State{
		seats:     make([]seat, len(tb.hands)),
		deck:      tb.deck.Clone(),
		aside:     tb.aside.Clone(),
		withdrawn: tb.withdrawn,
	}
	for i := range s.seats {
		s.seats[i].hand = tb.hands[i].Clone()
		s.seats[i].open = deck.Pile{}
		if i < len(tb.open) {
			s.seats[i].open = tb.open[i].Clone()
		}
		if i < len(tb.chips) {
			s.seats[i].chips = tb.chips[i]
		}
	}
	for _, p := range tb.immune {
		s.seats[p-1].immune = true
	}
	return s
}

func pile(cards ...deck.Card) deck.Pile {
	return deck.Pile(cards)
}
