package game

import (
	"slices"

	"github.com/lox/loveletter/internal/deck"
)

// Validate checks whether a may be played now. It never modifies the state.
// A rejected action yields a *RuleError; a broken state yields an
// *InvariantError.
func (s *State) Validate(a Action) error {
	if !s.validPlayer(a.Player) {
		return ruleErr(ErrUnknownPlayer, "player %d", a.Player)
	}

	active, err := s.activePlayer()
	if err != nil {
		return err
	}
	if a.Player != active {
		return ruleErr(ErrNotPlayersTurn, "player %d to play", active)
	}

	if !slices.Contains(s.LegalCards(a.Player), a.Card) {
		if s.seat(a.Player).hand.Contains(a.Card) {
			return ruleErr(ErrIllegalCard, "%v must be played", deck.Countess)
		}
		return ruleErr(ErrIllegalCard, "%v not in hand", a.Card)
	}

	if err := s.validateTarget(a); err != nil {
		return err
	}

	return validateGuess(a)
}

func (s *State) validateTarget(a Action) error {
	if a.Card.Rule().Target == deck.NoTarget {
		if a.Target != 0 {
			return ruleErr(ErrIllegalTarget, "%v takes no target", a.Card)
		}
		return nil
	}

	targets := s.Targets(a.Player, a.Card)
	if len(targets) == 0 {
		if a.Target != 0 {
			return ruleErr(ErrIllegalTarget, "no player can be targeted")
		}
		return nil
	}
	if !containsPlayer(targets, a.Target) {
		if a.Target == 0 {
			return ruleErr(ErrIllegalTarget, "%v needs a target", a.Card)
		}
		return ruleErr(ErrIllegalTarget, "player %d cannot be targeted", a.Target)
	}
	return nil
}

func validateGuess(a Action) error {
	if a.Card.Rule().Guesses {
		if !a.Guess.Valid() || a.Guess == deck.Guard {
			return ruleErr(ErrIllegalGuess, "guess must be %v through %v", deck.Priest, deck.Princess)
		}
		return nil
	}
	if a.Guess != deck.None {
		return ruleErr(ErrIllegalGuess, "%v takes no guess", a.Card)
	}
	return nil
}

// LegalCards returns the distinct cards the player may play from their hand.
// Holding the Countess together with the King or a Prince forces the Countess.
func (s *State) LegalCards(p int) []deck.Card {
	if !s.validPlayer(p) {
		return nil
	}
	hand := s.seat(p).hand
	if hand.Contains(deck.Countess) && (hand.Contains(deck.Prince) || hand.Contains(deck.King)) {
		return []deck.Card{deck.Countess}
	}
	cards := make([]deck.Card, 0, len(hand))
	for _, c := range hand {
		if !slices.Contains(cards, c) {
			cards = append(cards, c)
		}
	}
	return cards
}

// Targets returns the players p may choose when playing card, in seat order.
// An empty result for a targeted card means the effect fizzles.
func (s *State) Targets(p int, card deck.Card) []int {
	if !card.Valid() {
		return nil
	}
	kind := card.Rule().Target
	if kind == deck.NoTarget {
		return nil
	}
	var targets []int
	for _, other := range s.Alive() {
		if other == p {
			if kind == deck.AnyPlayer {
				targets = append(targets, other)
			}
			continue
		}
		if !s.Immune(other) {
			targets = append(targets, other)
		}
	}
	return targets
}

// LegalActions enumerates every action the active player may take. It
// returns nil when nobody is to play.
func (s *State) LegalActions() []Action {
	p := s.Active()
	if p == 0 {
		return nil
	}

	var actions []Action
	for _, card := range s.LegalCards(p) {
		rule := card.Rule()
		targets := []int{0}
		if rule.Target != deck.NoTarget {
			if t := s.Targets(p, card); len(t) > 0 {
				targets = t
			}
		}
		for _, target := range targets {
			if !rule.Guesses {
				actions = append(actions, Action{Player: p, Card: card, Target: target})
				continue
			}
			for _, guess := range deck.Ranks[1:] {
				actions = append(actions, Action{Player: p, Card: card, Target: target, Guess: guess})
			}
		}
	}
	return actions
}
