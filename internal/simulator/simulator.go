// Package simulator plays many seeded rounds between bots, checking the
// table after every turn, and gathers statistics.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/loveletter/internal/bot"
	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/randutil"
	"github.com/lox/loveletter/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds  int
	Players int
	// Bots names the bot for each seat. A single name fills every seat;
	// an empty list means random bots.
	Bots    []string
	Seed    int64
	Workers int
	Logger  *log.Logger
}

// Simulator runs Love Letter round simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Lineup returns the bot name for every seat.
func (s *Simulator) Lineup() ([]string, error) {
	switch len(s.config.Bots) {
	case 0:
		return slices.Repeat([]string{"random"}, s.config.Players), nil
	case 1:
		return slices.Repeat(s.config.Bots, s.config.Players), nil
	case s.config.Players:
		return slices.Clone(s.config.Bots), nil
	default:
		return nil, fmt.Errorf("%d bots for %d players", len(s.config.Bots), s.config.Players)
	}
}

// Run plays the configured rounds across the workers. Round i is dealt
// from Seed+i so any round can be replayed on its own.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Players < game.MinPlayers || s.config.Players > game.MaxPlayers {
		return nil, fmt.Errorf("invalid number of players: %d", s.config.Players)
	}
	lineup, err := s.Lineup()
	if err != nil {
		return nil, err
	}

	logger := s.config.Logger.WithPrefix("simulator")
	logger.Info("Starting simulation", "rounds", s.config.Rounds, "players", s.config.Players, "bots", strings.Join(lineup, ","), "workers", s.config.Workers)

	total := &statistics.Statistics{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for w := range s.config.Workers {
		g.Go(func() error {
			local := &statistics.Statistics{}
			for i := w; i < s.config.Rounds; i += s.config.Workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				result, err := PlayRound(s.config.Seed+int64(i), lineup)
				if err != nil {
					return fmt.Errorf("round %d: %w", i+1, err)
				}
				local.Add(result)
			}
			mu.Lock()
			total.Merge(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	logger.Info("Simulation complete", "rounds", total.Rounds, "mean_turns", fmt.Sprintf("%.2f", total.Mean()))
	return total, nil
}

// PlayRound deals a round from seed and lets the named bots play it out.
// Bot i is seeded with seed+i so a round replays exactly.
func PlayRound(seed int64, lineup []string) (statistics.RoundResult, error) {
	st, err := game.New(len(lineup), randutil.New(seed))
	if err != nil {
		return statistics.RoundResult{}, err
	}

	bots := make([]bot.Bot, len(lineup))
	for i, name := range lineup {
		if bots[i], err = bot.New(name, seed+int64(i)+1); err != nil {
			return statistics.RoundResult{}, err
		}
	}

	result := statistics.RoundResult{Seed: seed, GroupSize: len(lineup)}
	for {
		if err := st.CheckInvariants(); err != nil {
			return result, fmt.Errorf("seed %d turn %d: %w", seed, result.Turns, err)
		}
		active := st.Active()
		if active == 0 {
			break
		}
		if result.Turns >= deck.Size {
			return result, fmt.Errorf("seed %d: round did not end after %d turns", seed, result.Turns)
		}

		legal := st.LegalActions()
		if len(legal) == 0 {
			return result, fmt.Errorf("seed %d: player %d has no legal action", seed, active)
		}
		a := bots[active-1].Choose(st.View(active), legal)
		turn, err := st.Play(a)
		if err != nil {
			return result, fmt.Errorf("seed %d: %s played %+v: %w", seed, lineup[active-1], a, err)
		}
		result.EliminatedBy[a.Card] += len(turn.Eliminated)
		result.Turns++
	}

	res, err := st.Conclude()
	switch {
	case errors.Is(err, game.ErrCorruptState) && len(st.Alive()) > 1:
		res = game.Resolution{Reason: game.Tied}
	case err != nil:
		return result, fmt.Errorf("seed %d: %w", seed, err)
	}
	result.Winner = res.Winner
	result.Reason = res.Reason
	return result, nil
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, lineup []string) {
	low, high := stats.Mean()-1.96*stats.StdError(), stats.Mean()+1.96*stats.StdError()

	fmt.Fprintf(w, "\n=== RESULTS: %s ===\n", strings.Join(lineup, " vs "))
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)

	fmt.Fprintf(w, "\n=== WINS BY SEAT ===\n")
	for i, name := range lineup {
		lo, hi := stats.WinRateInterval95(i + 1)
		fmt.Fprintf(w, "Player %d (%s): %d (%.1f%%, 95%% CI [%.1f%%, %.1f%%])\n",
			i+1, name, stats.Wins[i+1], stats.WinRate(i+1)*100, lo*100, hi*100)
	}
	if stats.Wins[0] > 0 {
		fmt.Fprintf(w, "Tied: %d (%.1f%%)\n", stats.Wins[0], stats.WinRate(0)*100)
	}

	fmt.Fprintf(w, "\n=== WIN REASONS ===\n")
	for _, reason := range []game.WinReason{game.LastStanding, game.HighestCard, game.DiscardTotal, game.Tied} {
		if n := stats.Reasons[reason]; n > 0 {
			fmt.Fprintf(w, "%s: %d (%.1f%%)\n", reason, n, float64(n)/float64(stats.Rounds)*100)
		}
	}

	fmt.Fprintf(w, "\n=== TURNS PER ROUND ===\n")
	fmt.Fprintf(w, "Mean: %.2f  Median: %.1f  Std Dev: %.2f  Max: %d\n", stats.Mean(), stats.Median(), stats.StdDev(), stats.MaxTurns)
	fmt.Fprintf(w, "95%% CI: [%.2f, %.2f]\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== ELIMINATIONS BY CARD ===\n")
	for _, c := range deck.Ranks {
		if n := stats.EliminatedBy[c]; n > 0 {
			fmt.Fprintf(w, "%s: %d\n", c, n)
		}
	}
}
