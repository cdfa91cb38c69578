package game

import (
	"slices"

	"github.com/lox/loveletter/internal/deck"
)

const (
	MinPlayers = 2
	MaxPlayers = 4

	// asideCount cards are set aside face down in a two-player round.
	asideCount = 3
)

// Action is a proposed or recorded turn. A zero Target and a deck.None Guess
// mean the action carries no target or guess.
type Action struct {
	Player int
	Card   deck.Card
	Target int
	Guess  deck.Card
}

type seat struct {
	hand   deck.Pile
	open   deck.Pile
	chips  int
	immune bool
}

// State is everything on the table for one round. Chips carry over between
// rounds via Reset.
type State struct {
	seats     []seat
	deck      deck.Pile
	aside     deck.Pile
	withdrawn deck.Card
	lastTurn  *Action
}

// GroupSize returns the number of players.
func (s *State) GroupSize() int {
	return len(s.seats)
}

func (s *State) validPlayer(p int) bool {
	return p >= 1 && p <= len(s.seats)
}

func (s *State) seat(p int) *seat {
	return &s.seats[p-1]
}

// Deck returns a copy of the draw pile, bottom first.
func (s *State) Deck() deck.Pile {
	return s.deck.Clone()
}

// Aside returns a copy of the cards set aside in a two-player round.
func (s *State) Aside() deck.Pile {
	return s.aside.Clone()
}

// Withdrawn returns the face-down withdrawn card, or deck.None once claimed.
func (s *State) Withdrawn() deck.Card {
	return s.withdrawn
}

// LastTurn returns the most recently applied action, if any.
func (s *State) LastTurn() (Action, bool) {
	if s.lastTurn == nil {
		return Action{}, false
	}
	return *s.lastTurn, true
}

// Hand returns a copy of the player's hand.
func (s *State) Hand(p int) deck.Pile {
	if !s.validPlayer(p) {
		return nil
	}
	return s.seat(p).hand.Clone()
}

// Open returns a copy of the player's open pile.
func (s *State) Open(p int) deck.Pile {
	if !s.validPlayer(p) {
		return nil
	}
	return s.seat(p).open.Clone()
}

// Chips returns the player's round-win count.
func (s *State) Chips(p int) int {
	if !s.validPlayer(p) {
		return 0
	}
	return s.seat(p).chips
}

// Immune reports whether the player is currently protected by a Handmaid.
// Protection only counts while the player holds a single card.
func (s *State) Immune(p int) bool {
	if !s.validPlayer(p) {
		return false
	}
	st := s.seat(p)
	return st.immune && len(st.hand) == 1
}

// IsAlive reports whether the player still holds a card.
func (s *State) IsAlive(p int) bool {
	return s.validPlayer(p) && len(s.seat(p).hand) > 0
}

// Alive returns the players still in the round in ascending order.
func (s *State) Alive() []int {
	alive := make([]int, 0, len(s.seats))
	for i := range s.seats {
		if len(s.seats[i].hand) > 0 {
			alive = append(alive, i+1)
		}
	}
	return alive
}

// Active returns the player holding two cards, or 0 when no single player does.
func (s *State) Active() int {
	p, err := s.activePlayer()
	if err != nil {
		return 0
	}
	return p
}

func (s *State) activePlayer() (int, error) {
	active := 0
	for i := range s.seats {
		switch n := len(s.seats[i].hand); {
		case n == 2:
			if active != 0 {
				return 0, invariantErr(ErrMultipleActive, "players %d and %d both hold two cards", active, i+1)
			}
			active = i + 1
		case n > 2:
			return 0, invariantErr(ErrCorruptState, "player %d holds %d cards", i+1, n)
		}
	}
	if active != 0 {
		return active, nil
	}
	if s.RoundOver() {
		return 0, ruleErr(ErrRoundOver, "no turn to play")
	}
	return 0, invariantErr(ErrNoActivePlayer, "round in progress but nobody holds two cards")
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := &State{
		seats:     make([]seat, len(s.seats)),
		deck:      s.deck.Clone(),
		aside:     s.aside.Clone(),
		withdrawn: s.withdrawn,
	}
	for i, st := range s.seats {
		c.seats[i] = seat{
			hand:   st.hand.Clone(),
			open:   st.open.Clone(),
			chips:  st.chips,
			immune: st.immune,
		}
	}
	if s.lastTurn != nil {
		lt := *s.lastTurn
		c.lastTurn = &lt
	}
	return c
}

// discardHand moves every card in the player's hand to their open pile.
func (s *State) discardHand(p int) {
	st := s.seat(p)
	st.open.Push(st.hand...)
	st.hand = st.hand[:0]
}

// eliminatedSince returns players alive in before that are no longer alive.
func (s *State) eliminatedSince(before []int) []int {
	var out []int
	for _, p := range before {
		if !s.IsAlive(p) {
			out = append(out, p)
		}
	}
	return out
}

func containsPlayer(players []int, p int) bool {
	return slices.Contains(players, p)
}
