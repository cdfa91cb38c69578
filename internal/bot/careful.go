package bot

import (
	"math/rand/v2"

	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/randutil"
)

// Careful never knocks itself out when it has a choice, keeps its higher
// card, guesses the card with the most unseen copies and only duels with a
// Baron when the card it keeps is strong.
type Careful struct {
	rng *rand.Rand
}

// NewCareful returns a Careful bot that breaks ties using seed.
func NewCareful(seed int64) *Careful {
	return &Careful{rng: rand.New(randutil.New(seed))}
}

const strongKeep = 5

func (c *Careful) Choose(view game.View, legal []game.Action) game.Action {
	unseen := Unseen(view)

	var best []game.Action
	bestScore := 0
	for _, a := range legal {
		score := c.score(view, unseen, a)
		switch {
		case len(best) == 0 || score > bestScore:
			best, bestScore = []game.Action{a}, score
		case score == bestScore:
			best = append(best, a)
		}
	}
	return best[c.rng.IntN(len(best))]
}

func (c *Careful) score(view game.View, unseen [deck.Princess + 1]int, a game.Action) int {
	kept := keptCard(view.Hand, a.Card)
	// Prefer spending the lower card.
	score := 10 * (deck.Princess.Value() - a.Card.Value())

	switch a.Card {
	case deck.Princess:
		return -1000
	case deck.Prince:
		if a.Target == view.Player && kept == deck.Princess {
			return -1000
		}
		if a.Target != view.Player {
			score += 5
		}
	case deck.Baron:
		if a.Target != 0 && kept.Value() < strongKeep {
			score -= 50
		}
	case deck.Guard:
		score += 3 * unseen[a.Guess]
		if a.Target != 0 {
			score += 5
		}
	case deck.Handmaid:
		score += 5
	case deck.King:
		if kept == deck.Princess {
			score -= 50
		}
	}
	return score
}

// keptCard is the card left in hand after playing played.
func keptCard(hand deck.Pile, played deck.Card) deck.Card {
	rest := hand.Clone()
	rest.Remove(played)
	if len(rest) == 0 {
		return deck.None
	}
	return rest[0]
}

// Unseen counts, per rank, the copies the viewer has not seen in any open
// pile or in their own hand.
func Unseen(view game.View) [deck.Princess + 1]int {
	counts := deck.FullCounts()
	for _, pile := range view.Open {
		for _, c := range pile {
			counts[c]--
		}
	}
	for _, c := range view.Hand {
		counts[c]--
	}
	return counts
}
