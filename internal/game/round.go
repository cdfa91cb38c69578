package game

import (
	"fmt"
	"slices"
)

// WinReason says which step of the tie-break decided a round.
type WinReason string

const (
	LastStanding WinReason = "last_standing"
	HighestCard  WinReason = "highest_card"
	DiscardTotal WinReason = "discard_total"

	// Tied is never returned by Resolve. Callers record it for a round
	// that ended in a tie no rule could break.
	Tied WinReason = "tied"
)

// Resolution is the decided outcome of a finished round.
type Resolution struct {
	Winner int       `json:"winner"`
	Reason WinReason `json:"reason"`
}

// TurnResult is what Play reports back after a full turn.
type TurnResult struct {
	Outcome
	// Next is the player dealt a card for the following turn, 0 when the
	// round ended.
	Next      int
	RoundOver bool
}

// Play validates, applies and advances a single turn. A rejected action
// leaves the state untouched.
func (s *State) Play(a Action) (TurnResult, error) {
	if err := s.Validate(a); err != nil {
		return TurnResult{}, err
	}
	out, err := s.Apply(a)
	if err != nil {
		return TurnResult{}, err
	}
	next := s.Advance(a.Player)
	return TurnResult{Outcome: out, Next: next, RoundOver: s.RoundOver()}, nil
}

// Advance deals the next card to the first alive player after player, seat
// order wrapping past the last seat, and returns who received it. It does
// nothing once the round is over or the deck is exhausted.
func (s *State) Advance(player int) int {
	if s.RoundOver() {
		return 0
	}
	alive := s.Alive()
	if len(alive) < 2 {
		return 0
	}
	card, ok := s.deck.Draw()
	if !ok {
		return 0
	}
	next := s.nextAlive(player)
	s.seat(next).hand.Push(card)
	return next
}

// nextAlive finds the first alive seat after p. It works when p itself has
// just been eliminated.
func (s *State) nextAlive(p int) int {
	n := len(s.seats)
	for i := 1; i <= n; i++ {
		candidate := (p-1+i)%n + 1
		if s.IsAlive(candidate) {
			return candidate
		}
	}
	return 0
}

// RoundOver reports whether the deck is empty or at most one player remains.
func (s *State) RoundOver() bool {
	return len(s.deck) == 0 || len(s.Alive()) <= 1
}

// RoundWinner returns the winner of a finished round.
func (s *State) RoundWinner() (int, error) {
	res, err := s.Resolve()
	if err != nil {
		return 0, err
	}
	return res.Winner, nil
}

// Resolve decides a finished round: the last player standing wins, else the
// highest card in hand, else the highest total of open cards among those
// tied. A tie after all three steps is reported as corrupt state.
func (s *State) Resolve() (Resolution, error) {
	if !s.RoundOver() {
		return Resolution{}, ruleErr(ErrRoundNotOver, "%d cards left in deck", len(s.deck))
	}

	alive := s.Alive()
	switch len(alive) {
	case 0:
		return Resolution{}, invariantErr(ErrCorruptState, "no players left")
	case 1:
		return Resolution{Winner: alive[0], Reason: LastStanding}, nil
	}

	for _, p := range alive {
		if n := len(s.seat(p).hand); n != 1 {
			return Resolution{}, ruleErr(ErrRoundNotOver, "player %d still has a turn to play", p)
		}
	}

	tied := highest(alive, func(p int) int { return s.seat(p).hand[0].Value() })
	if len(tied) == 1 {
		return Resolution{Winner: tied[0], Reason: HighestCard}, nil
	}

	tied = highest(tied, func(p int) int { return s.seat(p).open.Sum() })
	if len(tied) == 1 {
		return Resolution{Winner: tied[0], Reason: DiscardTotal}, nil
	}
	return Resolution{}, invariantErr(ErrCorruptState, "players %v tied on hand and discards", tied)
}

// Conclude resolves the round and awards the winner a chip.
func (s *State) Conclude() (Resolution, error) {
	res, err := s.Resolve()
	if err != nil {
		return Resolution{}, err
	}
	s.seat(res.Winner).chips++
	return res, nil
}

// highest returns the players sharing the maximum score.
func highest(players []int, score func(int) int) []int {
	best := 0
	var top []int
	for _, p := range players {
		switch v := score(p); {
		case len(top) == 0 || v > best:
			best = v
			top = []int{p}
		case v == best:
			top = append(top, p)
		}
	}
	return slices.Clip(top)
}

func (r Resolution) String() string {
	if r.Winner == 0 {
		return string(r.Reason)
	}
	return fmt.Sprintf("player %d (%s)", r.Winner, r.Reason)
}
