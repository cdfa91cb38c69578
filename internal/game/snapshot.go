package game

import (
	"fmt"

	"github.com/lox/loveletter/internal/deck"
)

// Snapshot is the serializable form of a State. Maps are keyed by player.
type Snapshot struct {
	GroupSize int               `json:"group_size"`
	Deck      deck.Pile         `json:"deck"`
	Hands     map[int]deck.Pile `json:"hands"`
	Open      map[int]deck.Pile `json:"open"`
	Aside     deck.Pile         `json:"aside"`
	Chips     map[int]int       `json:"chips"`
	Immune    map[int]bool      `json:"immune"`
	Withdrawn *deck.Card        `json:"withdrawn"`
	LastTurn  *TurnRecord       `json:"last_turn"`
}

// TurnRecord is the serialized form of the last applied action.
type TurnRecord struct {
	Player int        `json:"player"`
	Card   deck.Card  `json:"card"`
	Target *int       `json:"target"`
	Guess  *deck.Card `json:"guess"`
}

// NewTurnRecord converts an action, mapping absent target and guess to nil.
func NewTurnRecord(a Action) *TurnRecord {
	r := &TurnRecord{Player: a.Player, Card: a.Card}
	if a.Target != 0 {
		target := a.Target
		r.Target = &target
	}
	if a.Guess != deck.None {
		guess := a.Guess
		r.Guess = &guess
	}
	return r
}

// Action converts the record back to an Action.
func (r *TurnRecord) Action() Action {
	a := Action{Player: r.Player, Card: r.Card}
	if r.Target != nil {
		a.Target = *r.Target
	}
	if r.Guess != nil {
		a.Guess = *r.Guess
	}
	return a
}

// Snapshot captures the full state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		GroupSize: len(s.seats),
		Deck:      s.deck.Clone(),
		Hands:     make(map[int]deck.Pile, len(s.seats)),
		Open:      make(map[int]deck.Pile, len(s.seats)),
		Aside:     s.aside.Clone(),
		Chips:     make(map[int]int, len(s.seats)),
		Immune:    make(map[int]bool, len(s.seats)),
	}
	for i, st := range s.seats {
		p := i + 1
		snap.Hands[p] = st.hand.Clone()
		snap.Open[p] = st.open.Clone()
		snap.Chips[p] = st.chips
		snap.Immune[p] = st.immune
	}
	if s.withdrawn != deck.None {
		w := s.withdrawn
		snap.Withdrawn = &w
	}
	if s.lastTurn != nil {
		snap.LastTurn = NewTurnRecord(*s.lastTurn)
	}
	return snap
}

// FromSnapshot restores a State and verifies its invariants.
func FromSnapshot(snap Snapshot) (*State, error) {
	if snap.GroupSize < MinPlayers || snap.GroupSize > MaxPlayers {
		return nil, ruleErr(ErrInvalidGroupSize, "%d (want %d-%d)", snap.GroupSize, MinPlayers, MaxPlayers)
	}

	s := &State{
		seats: make([]seat, snap.GroupSize),
		deck:  snap.Deck.Clone(),
		aside: snap.Aside.Clone(),
	}
	for i := range s.seats {
		p := i + 1
		s.seats[i] = seat{
			hand:   snap.Hands[p].Clone(),
			open:   snap.Open[p].Clone(),
			chips:  snap.Chips[p],
			immune: snap.Immune[p],
		}
	}
	for _, m := range []int{len(snap.Hands), len(snap.Open)} {
		if m > snap.GroupSize {
			return nil, fmt.Errorf("restore snapshot: %w", invariantErr(ErrCorruptState, "more seats than group size %d", snap.GroupSize))
		}
	}
	if snap.Withdrawn != nil {
		s.withdrawn = *snap.Withdrawn
	}
	if snap.LastTurn != nil {
		a := snap.LastTurn.Action()
		s.lastTurn = &a
	}

	if err := s.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return s, nil
}

// CheckInvariants verifies card conservation and hand sizes.
func (s *State) CheckInvariants() error {
	all := s.deck.Clone()
	all.Push(s.aside...)
	if s.withdrawn != deck.None {
		all.Push(s.withdrawn)
	}

	holdingTwo := 0
	for i, st := range s.seats {
		all.Push(st.hand...)
		all.Push(st.open...)
		switch n := len(st.hand); {
		case n > 2:
			return invariantErr(ErrCorruptState, "player %d holds %d cards", i+1, n)
		case n == 2:
			holdingTwo++
		}
	}
	if holdingTwo > 1 {
		return invariantErr(ErrMultipleActive, "%d players hold two cards", holdingTwo)
	}

	for _, c := range all {
		if !c.Valid() {
			return invariantErr(ErrCorruptState, "invalid card %d", int(c))
		}
	}
	if len(all) != deck.Size || all.Counts() != deck.FullCounts() {
		return invariantErr(ErrCorruptState, "cards on table %v do not form a full deck", all.Counts())
	}

	wantAside := 0
	if len(s.seats) == 2 {
		wantAside = asideCount
	}
	if len(s.aside) != wantAside {
		return invariantErr(ErrCorruptState, "%d cards set aside for %d players", len(s.aside), len(s.seats))
	}
	return nil
}
