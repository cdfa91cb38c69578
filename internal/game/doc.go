// Package game implements the rules engine for a Love Letter round.
//
// The main type is State, which holds everything on the table for one round:
// the draw pile, each player's hand and open (discarded) cards, the cards set
// aside, the withdrawn card, chip counts and protection flags.
//
// # Basic Usage
//
// Deal a round and play turns until it is over:
//
//	s, err := game.New(3, randutil.New(1))
//	// ...
//	res, err := s.Play(game.Action{Player: 1, Card: deck.Guard, Target: 2, Guess: deck.Priest})
//	if s.RoundOver() {
//	    res, err := s.Conclude()
//	}
//
// # Turn Pipeline
//
// A turn is split into three steps so that a rejected action never touches
// the table:
//   - Validate: pure legality check, returns a *RuleError on rejection
//   - Apply: resolves the card's effect
//   - Advance: draws for the next alive player
//
// Play runs all three. Errors of type *InvariantError mean the state itself is
// broken and are never the caller's fault.
//
// # Deterministic Testing
//
// All randomness comes from a randutil.Source used only while dealing, so a
// seeded source replays identical rounds:
//
//	s, _ := game.New(3, randutil.New(1))
//	// deck [Priest Guard Countess Princess Guard Prince Handmaid Baron King Prince Guard]
//
// Players are numbered from 1.
package game
