// Package statistics aggregates the results of many simulated rounds.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/game"
)

// RoundResult is the outcome of one simulated round.
type RoundResult struct {
	Seed      int64 // RNG seed the round was dealt from (for replay)
	GroupSize int
	Winner    int // 0 for a tied round
	Reason    game.WinReason
	Turns     int
	// EliminatedBy counts knock-outs by the card that caused them.
	EliminatedBy [deck.Princess + 1]int
}

// Statistics tracks results across rounds. Turn counts feed the mean and
// spread; wins are kept per seat.
type Statistics struct {
	Rounds    int
	SumTurns  float64
	SumTurns2 float64   // Sum of squares for variance calculation
	Turns     []float64 // All turn counts for median/percentile calculation

	Wins         [game.MaxPlayers + 1]int // Index 0 counts tied rounds
	Reasons      map[game.WinReason]int
	EliminatedBy [deck.Princess + 1]int
	MaxTurns     int
}

// Add incorporates a round.
func (s *Statistics) Add(r RoundResult) {
	if s.Reasons == nil {
		s.Reasons = make(map[game.WinReason]int)
	}
	turns := float64(r.Turns)
	s.Rounds++
	s.SumTurns += turns
	s.SumTurns2 += turns * turns
	s.Turns = append(s.Turns, turns)

	if r.Winner >= 0 && r.Winner <= game.MaxPlayers {
		s.Wins[r.Winner]++
	}
	s.Reasons[r.Reason]++
	for c, n := range r.EliminatedBy {
		s.EliminatedBy[c] += n
	}
	s.MaxTurns = max(s.MaxTurns, r.Turns)
}

// Merge folds other into s. Workers collect separately and merge at the end.
func (s *Statistics) Merge(other *Statistics) {
	if s.Reasons == nil {
		s.Reasons = make(map[game.WinReason]int)
	}
	s.Rounds += other.Rounds
	s.SumTurns += other.SumTurns
	s.SumTurns2 += other.SumTurns2
	s.Turns = append(s.Turns, other.Turns...)
	for i, n := range other.Wins {
		s.Wins[i] += n
	}
	for reason, n := range other.Reasons {
		s.Reasons[reason] += n
	}
	for c, n := range other.EliminatedBy {
		s.EliminatedBy[c] += n
	}
	s.MaxTurns = max(s.MaxTurns, other.MaxTurns)
}

// Mean returns the mean number of turns per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumTurns / float64(s.Rounds)
}

// Variance returns the sample variance of turns per round
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumTurns2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of turns per round
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// WinRate returns the share of rounds won by player. Player 0 gives the
// share of tied rounds.
func (s *Statistics) WinRate(player int) float64 {
	if s.Rounds == 0 || player < 0 || player > game.MaxPlayers {
		return 0
	}
	return float64(s.Wins[player]) / float64(s.Rounds)
}

// WinRateInterval95 returns the normal-approximation 95% confidence interval
// for a player's win rate.
func (s *Statistics) WinRateInterval95(player int) (float64, float64) {
	if s.Rounds == 0 {
		return 0, 0
	}
	p := s.WinRate(player)
	margin := 1.96 * math.Sqrt(p*(1-p)/float64(s.Rounds))
	return math.Max(0, p-margin), math.Min(1, p+margin)
}

// Median returns the median turns per round
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the turn count at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Turns) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Turns))
	copy(sorted, s.Turns)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks that the counters agree with each other.
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Turns) != s.Rounds {
		return fmt.Errorf("turns array length (%d) does not match rounds count (%d)",
			len(s.Turns), s.Rounds)
	}

	wins := 0
	for _, n := range s.Wins {
		wins += n
	}
	if wins != s.Rounds {
		return fmt.Errorf("wins total (%d) does not match rounds count (%d)", wins, s.Rounds)
	}

	reasons := 0
	for _, n := range s.Reasons {
		reasons += n
	}
	if reasons != s.Rounds {
		return fmt.Errorf("reasons total (%d) does not match rounds count (%d)", reasons, s.Rounds)
	}

	return nil
}
