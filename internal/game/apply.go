package game

import (
	"github.com/lox/loveletter/internal/deck"
)

// Outcome describes what an applied action did beyond moving the played card.
type Outcome struct {
	// Revealed is the target's card shown to the actor by a Priest.
	Revealed deck.Card
	// Hit reports a correct Guard guess.
	Hit bool
	// Fizzled reports a targeted card played with nobody to target.
	Fizzled bool
	// Drew is the replacement card a Prince's target received.
	Drew deck.Card
	// FromWithdrawn reports that the replacement was the withdrawn card.
	FromWithdrawn bool
	// Eliminated lists players knocked out by this action.
	Eliminated []int
}

// Apply resolves an action that Validate accepted. Apply is the only way a
// turn changes the table; it does not deal the next player's card (see
// Advance).
func (s *State) Apply(a Action) (Outcome, error) {
	if err := s.checkApplicable(a); err != nil {
		return Outcome{}, err
	}

	before := s.Alive()
	actor := s.seat(a.Player)
	var out Outcome

	// Protection lasts until the start of the player's own next turn.
	actor.immune = false

	actor.hand.Remove(a.Card)
	actor.open.Push(a.Card)

	if a.Target != 0 {
		target := s.seat(a.Target)
		switch a.Card {
		case deck.Guard:
			if target.hand.Remove(a.Guess) {
				target.open.Push(a.Guess)
				out.Hit = true
			}
		case deck.Priest:
			if len(target.hand) > 0 {
				out.Revealed = target.hand[0]
			}
		case deck.Baron:
			mine, theirs := actor.hand[0], target.hand[0]
			switch {
			case mine < theirs:
				s.discardHand(a.Player)
			case theirs < mine:
				s.discardHand(a.Target)
			}
		case deck.King:
			actor.hand, target.hand = target.hand, actor.hand
		}
	} else if a.Card.Rule().Target == deck.Opponent {
		out.Fizzled = true
	}

	switch a.Card {
	case deck.Handmaid:
		actor.immune = true
	case deck.Prince:
		if a.Target != 0 {
			s.discardHand(a.Target)
			card, ok := s.deck.Draw()
			if !ok && s.withdrawn != deck.None {
				card, ok = s.withdrawn, true
				s.withdrawn = deck.None
				out.FromWithdrawn = true
			}
			if ok {
				s.seat(a.Target).hand.Push(card)
				out.Drew = card
			}
		}
	case deck.Princess:
		s.discardHand(a.Player)
	}

	record := a
	s.lastTurn = &record
	out.Eliminated = s.eliminatedSince(before)

	return out, nil
}

// checkApplicable guards the preconditions Apply relies on so that a caller
// skipping Validate gets an error instead of a half-applied turn.
func (s *State) checkApplicable(a Action) error {
	if !s.validPlayer(a.Player) {
		return ruleErr(ErrUnknownPlayer, "player %d", a.Player)
	}
	if a.Target != 0 && !s.validPlayer(a.Target) {
		return ruleErr(ErrIllegalTarget, "player %d", a.Target)
	}
	if !a.Card.Valid() || !s.seat(a.Player).hand.Contains(a.Card) {
		return ruleErr(ErrIllegalCard, "%v not in hand", a.Card)
	}
	if a.Card == deck.Baron && a.Target != 0 {
		mine, theirs := len(s.seat(a.Player).hand), len(s.seat(a.Target).hand)
		if mine != 2 || theirs != 1 || a.Target == a.Player {
			return invariantErr(ErrMalformedComparison, "player %d holds %d cards, player %d holds %d", a.Player, mine-1, a.Target, theirs)
		}
	}
	return nil
}
