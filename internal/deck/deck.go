package deck

import "slices"

// Pile is an ordered sequence of cards. When used as a draw pile the top of
// the pile is the last element.
type Pile []Card

// Full returns the complete, unshuffled 16-card deck in ascending rank order.
func Full() Pile {
	p := make(Pile, 0, Size)
	for _, c := range Ranks {
		for range rules[c].Count {
			p = append(p, c)
		}
	}
	return p
}

// Draw removes and returns the top card. It reports false when the pile is empty.
func (p *Pile) Draw() (Card, bool) {
	n := len(*p)
	if n == 0 {
		return None, false
	}
	c := (*p)[n-1]
	*p = (*p)[:n-1]
	return c, true
}

// Push adds cards to the top of the pile.
func (p *Pile) Push(cards ...Card) {
	*p = append(*p, cards...)
}

// Remove takes the first occurrence of c out of the pile.
func (p *Pile) Remove(c Card) bool {
	i := slices.Index(*p, c)
	if i < 0 {
		return false
	}
	*p = slices.Delete(*p, i, i+1)
	return true
}

// Contains reports whether c is in the pile.
func (p Pile) Contains(c Card) bool {
	return slices.Contains(p, c)
}

// Sum returns the total value of the cards in the pile.
func (p Pile) Sum() int {
	total := 0
	for _, c := range p {
		total += c.Value()
	}
	return total
}

// Clone returns an independent copy. A nil pile clones to an empty one so
// snapshots always serialize as arrays.
func (p Pile) Clone() Pile {
	out := make(Pile, len(p))
	copy(out, p)
	return out
}

// Counts returns how many of each rank the pile holds, indexed by card.
func (p Pile) Counts() [Princess + 1]int {
	var counts [Princess + 1]int
	for _, c := range p {
		if c.Valid() {
			counts[c]++
		}
	}
	return counts
}

// FullCounts is Counts of a full deck.
func FullCounts() [Princess + 1]int {
	var counts [Princess + 1]int
	for _, c := range Ranks {
		counts[c] = rules[c].Count
	}
	return counts
}
