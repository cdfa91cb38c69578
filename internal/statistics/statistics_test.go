package statistics

import (
	"math"
	"strings"
	"testing"

	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/game"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	if stats.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty stats, got %f", stats.Variance())
	}
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.Median())
	}
	if stats.WinRate(1) != 0 {
		t.Errorf("Expected win rate of 0 for empty stats, got %f", stats.WinRate(1))
	}
	if err := stats.Validate(); err == nil {
		t.Error("Expected empty stats to fail validation")
	}
}

func TestStatistics_Add(t *testing.T) {
	stats := &Statistics{}
	var eliminated [deck.Princess + 1]int
	eliminated[deck.Guard] = 2
	eliminated[deck.Baron] = 1

	stats.Add(RoundResult{Seed: 1, GroupSize: 4, Winner: 3, Reason: game.LastStanding, Turns: 6, EliminatedBy: eliminated})
	stats.Add(RoundResult{Seed: 2, GroupSize: 4, Winner: 1, Reason: game.HighestCard, Turns: 12})
	stats.Add(RoundResult{Seed: 3, GroupSize: 4, Winner: 0, Reason: game.Tied, Turns: 12})

	if stats.Rounds != 3 {
		t.Errorf("Expected 3 rounds, got %d", stats.Rounds)
	}
	if stats.Mean() != 10 {
		t.Errorf("Expected mean of 10, got %f", stats.Mean())
	}
	if stats.Variance() != 12 {
		t.Errorf("Expected variance of 12, got %f", stats.Variance())
	}
	if stats.Median() != 12 {
		t.Errorf("Expected median of 12, got %f", stats.Median())
	}
	if stats.MaxTurns != 12 {
		t.Errorf("Expected max turns of 12, got %d", stats.MaxTurns)
	}
	if stats.Wins[3] != 1 || stats.Wins[1] != 1 || stats.Wins[0] != 1 {
		t.Errorf("Unexpected wins %v", stats.Wins)
	}
	if stats.Reasons[game.LastStanding] != 1 || stats.Reasons[game.Tied] != 1 {
		t.Errorf("Unexpected reasons %v", stats.Reasons)
	}
	if stats.EliminatedBy[deck.Guard] != 2 || stats.EliminatedBy[deck.Baron] != 1 {
		t.Errorf("Unexpected eliminations %v", stats.EliminatedBy)
	}
	if math.Abs(stats.WinRate(3)-1.0/3) > 1e-9 {
		t.Errorf("Expected win rate of 1/3, got %f", stats.WinRate(3))
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Expected valid stats, got %v", err)
	}
}

func TestStatistics_Percentiles(t *testing.T) {
	stats := &Statistics{}
	for i := 1; i <= 5; i++ {
		stats.Add(RoundResult{Winner: 1, Reason: game.LastStanding, Turns: i})
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 2},
		{0.5, 3},
		{0.9, 4.6},
		{1, 5},
	}
	for _, tt := range tests {
		if got := stats.Percentile(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}
}

func TestStatistics_Merge(t *testing.T) {
	a, b := &Statistics{}, &Statistics{}
	a.Add(RoundResult{Winner: 1, Reason: game.LastStanding, Turns: 4})
	b.Add(RoundResult{Winner: 2, Reason: game.DiscardTotal, Turns: 8})
	b.Add(RoundResult{Winner: 2, Reason: game.HighestCard, Turns: 9})

	a.Merge(b)

	if a.Rounds != 3 {
		t.Errorf("Expected 3 rounds, got %d", a.Rounds)
	}
	if a.Wins[2] != 2 {
		t.Errorf("Expected 2 wins for player 2, got %d", a.Wins[2])
	}
	if a.MaxTurns != 9 {
		t.Errorf("Expected max turns of 9, got %d", a.MaxTurns)
	}
	if a.Mean() != 7 {
		t.Errorf("Expected mean of 7, got %f", a.Mean())
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Expected valid stats, got %v", err)
	}
}

func TestStatistics_WinRateInterval(t *testing.T) {
	stats := &Statistics{}
	for i := range 100 {
		stats.Add(RoundResult{Winner: 1 + i%2, Reason: game.LastStanding, Turns: 5})
	}

	lo, hi := stats.WinRateInterval95(1)
	if lo >= 0.5 || hi <= 0.5 {
		t.Errorf("Expected interval around 0.5, got [%f, %f]", lo, hi)
	}
	if math.Abs((hi-lo)/2-1.96*0.05) > 1e-9 {
		t.Errorf("Unexpected margin %f", (hi-lo)/2)
	}
}

func TestStatistics_ValidateMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Winner: 1, Reason: game.LastStanding, Turns: 3})
	stats.Wins[2]++

	err := stats.Validate()
	if err == nil || !strings.Contains(err.Error(), "wins total") {
		t.Errorf("Expected wins mismatch, got %v", err)
	}
}
