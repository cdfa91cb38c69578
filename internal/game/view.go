package game

import "github.com/lox/loveletter/internal/deck"

// View is what one player may see of the table: their own hand, everyone's
// open cards and public counters. Other hands, the aside pile and the
// withdrawn card stay hidden.
type View struct {
	Player     int               `json:"player"`
	GroupSize  int               `json:"group_size"`
	Hand       deck.Pile         `json:"hand"`
	HandSizes  map[int]int       `json:"hand_sizes"`
	Open       map[int]deck.Pile `json:"open"`
	Chips      map[int]int       `json:"chips"`
	Immune     map[int]bool      `json:"immune"`
	DeckSize   int               `json:"deck_size"`
	AsideSize  int               `json:"aside_size"`
	Withdrawn  bool              `json:"withdrawn"`
	Active     int               `json:"active"`
	LastTurn   *TurnRecord       `json:"last_turn"`
	RoundOver  bool              `json:"round_over"`
	LegalCards []deck.Card       `json:"legal_cards,omitempty"`
}

// View projects the state for player p. A p of 0 gives a spectator view with
// no hand.
func (s *State) View(p int) View {
	v := View{
		Player:    p,
		GroupSize: len(s.seats),
		Hand:      deck.Pile{},
		HandSizes: make(map[int]int, len(s.seats)),
		Open:      make(map[int]deck.Pile, len(s.seats)),
		Chips:     make(map[int]int, len(s.seats)),
		Immune:    make(map[int]bool, len(s.seats)),
		DeckSize:  len(s.deck),
		AsideSize: len(s.aside),
		Withdrawn: s.withdrawn != deck.None,
		Active:    s.Active(),
		RoundOver: s.RoundOver(),
	}
	for i, st := range s.seats {
		player := i + 1
		v.HandSizes[player] = len(st.hand)
		v.Open[player] = st.open.Clone()
		v.Chips[player] = st.chips
		v.Immune[player] = s.Immune(player)
	}
	if s.validPlayer(p) {
		v.Hand = s.seat(p).hand.Clone()
		if v.Active == p {
			v.LegalCards = s.LegalCards(p)
		}
	}
	if s.lastTurn != nil {
		v.LastTurn = NewTurnRecord(*s.lastTurn)
	}
	return v
}

// LegalActions enumerates the viewer's legal actions from what the view
// shows. It matches State.LegalActions for the active player and is empty
// for everyone else.
func (v View) LegalActions() []Action {
	if v.Player == 0 || v.Active != v.Player {
		return nil
	}

	var actions []Action
	for _, card := range v.LegalCards {
		rule := card.Rule()
		targets := []int{0}
		if rule.Target != deck.NoTarget {
			if t := v.targets(rule.Target); len(t) > 0 {
				targets = t
			}
		}
		for _, target := range targets {
			if !rule.Guesses {
				actions = append(actions, Action{Player: v.Player, Card: card, Target: target})
				continue
			}
			for _, guess := range deck.Ranks[1:] {
				actions = append(actions, Action{Player: v.Player, Card: card, Target: target, Guess: guess})
			}
		}
	}
	return actions
}

func (v View) targets(kind deck.Targeting) []int {
	var targets []int
	for p := 1; p <= v.GroupSize; p++ {
		if v.HandSizes[p] == 0 {
			continue
		}
		if p == v.Player {
			if kind == deck.AnyPlayer {
				targets = append(targets, p)
			}
			continue
		}
		if !v.Immune[p] {
			targets = append(targets, p)
		}
	}
	return targets
}
