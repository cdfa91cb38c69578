package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Card is one of the eight ranks in the deck. The rank is also the card's
// value when hands are compared.
type Card int

const (
	// None marks the absence of a card (no guess, no withdrawn card).
	None Card = iota
	Guard
	Priest
	Baron
	Handmaid
	Prince
	King
	Countess
	Princess
)

// Targeting describes who a card may be played against.
type Targeting int

const (
	// NoTarget cards never take a target.
	NoTarget Targeting = iota
	// Opponent cards target another alive, unprotected player.
	Opponent
	// AnyPlayer cards may also target the player who plays them.
	AnyPlayer
)

func (t Targeting) String() string {
	switch t {
	case NoTarget:
		return "none"
	case Opponent:
		return "opponent"
	case AnyPlayer:
		return "any"
	default:
		return "unknown"
	}
}

// Rule is the static description of a rank.
type Rule struct {
	Name    string
	Count   int
	Target  Targeting
	Guesses bool
	Text    string
}

var rules = [...]Rule{
	Guard:    {Name: "Guard", Count: 5, Target: Opponent, Guesses: true, Text: "Name a non-Guard card; if the target holds it, they are out."},
	Priest:   {Name: "Priest", Count: 2, Target: Opponent, Text: "Look at another player's hand."},
	Baron:    {Name: "Baron", Count: 2, Target: Opponent, Text: "Compare hands; lower value is out."},
	Handmaid: {Name: "Handmaid", Count: 2, Target: NoTarget, Text: "Protection until your next turn."},
	Prince:   {Name: "Prince", Count: 2, Target: AnyPlayer, Text: "A player discards their hand and draws a new card."},
	King:     {Name: "King", Count: 1, Target: Opponent, Text: "Trade hands with another player."},
	Countess: {Name: "Countess", Count: 1, Target: NoTarget, Text: "Must be played if you also hold the King or a Prince."},
	Princess: {Name: "Princess", Count: 1, Target: NoTarget, Text: "If you discard this card, you are out."},
}

// Ranks lists every card rank in ascending order.
var Ranks = []Card{Guard, Priest, Baron, Handmaid, Prince, King, Countess, Princess}

// Size is the number of cards in a full deck.
const Size = 16

// Valid reports whether c is one of the eight ranks.
func (c Card) Valid() bool {
	return c >= Guard && c <= Princess
}

// Rule returns the static rule entry for the card. It panics on an invalid card.
func (c Card) Rule() Rule {
	if !c.Valid() {
		panic(fmt.Sprintf("deck: no rule for card %d", c))
	}
	return rules[c]
}

// Value returns the comparison value of the card.
func (c Card) Value() int {
	return int(c)
}

func (c Card) String() string {
	if !c.Valid() {
		if c == None {
			return "-"
		}
		return "?"
	}
	return rules[c].Name
}

// Parse accepts either a rank number ("5") or a card name ("prince").
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, fmt.Errorf("empty card")
	}
	if n, err := strconv.Atoi(s); err == nil {
		c := Card(n)
		if !c.Valid() {
			return None, fmt.Errorf("invalid card rank %d", n)
		}
		return c, nil
	}
	for _, c := range Ranks {
		if strings.EqualFold(rules[c].Name, s) {
			return c, nil
		}
	}
	return None, fmt.Errorf("unknown card %q", s)
}
