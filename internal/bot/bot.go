// Package bot provides computer players for simulations and the terminal
// game.
package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/randutil"
)

// Bot picks one of the legal actions for the player whose view it is given.
// legal is never empty.
type Bot interface {
	Choose(view game.View, legal []game.Action) game.Action
}

// Random chooses uniformly among the legal actions.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random bot driven by seed.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(randutil.New(seed))}
}

func (r *Random) Choose(_ game.View, legal []game.Action) game.Action {
	return legal[r.rng.IntN(len(legal))]
}

// New returns the bot called name, seeded with seed.
func New(name string, seed int64) (Bot, error) {
	switch strings.ToLower(name) {
	case "random":
		return NewRandom(seed), nil
	case "careful":
		return NewCareful(seed), nil
	default:
		return nil, fmt.Errorf("unknown bot %q", name)
	}
}

// Names lists the bots New accepts.
func Names() []string {
	return []string{"random", "careful"}
}
