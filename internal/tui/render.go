package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/game"
)

// FormatCards renders cards as "[Guard Baron]" in their colours.
func FormatCards(cards deck.Pile) string {
	formatted := make([]string, 0, len(cards))
	for _, c := range cards {
		formatted = append(formatted, CardStyle(c).Render(c.String()))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// PlayersTable renders one row per seat from a player's view: chips, open
// cards and whether the seat is out or protected.
func PlayersTable(v game.View) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(InfoStyle).
		Headers("Player", "Chips", "Cards", "Open", "Status").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HandInfoStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for p := 1; p <= v.GroupSize; p++ {
		name := strconv.Itoa(p)
		if p == v.Player {
			name += " (you)"
		}
		status := ""
		switch {
		case v.HandSizes[p] == 0:
			status = ErrorStyle.Render("out")
		case v.Immune[p]:
			status = SuccessStyle.Render("protected")
		case p == v.Active:
			status = WarningStyle.Render("to play")
		}
		t.Row(name, strconv.Itoa(v.Chips[p]), strconv.Itoa(v.HandSizes[p]), FormatCards(v.Open[p]), status)
	}
	return t.String()
}

// RenderDeal shows every hidden part of a freshly dealt round. It is meant
// for inspecting seeds, not for play.
func RenderDeal(s *game.State, seed int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", HeaderStyle.Render(fmt.Sprintf(" Seed %d, %d players ", seed, s.GroupSize())))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(InfoStyle).
		Headers("Player", "Hand").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HandInfoStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for p := 1; p <= s.GroupSize(); p++ {
		t.Row(strconv.Itoa(p), FormatCards(s.Hand(p)))
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	fmt.Fprintf(&b, "Active:    player %d\n", s.Active())
	fmt.Fprintf(&b, "Deck:      %s (top last)\n", FormatCards(s.Deck()))
	if aside := s.Aside(); len(aside) > 0 {
		fmt.Fprintf(&b, "Aside:     %s\n", FormatCards(aside))
	}
	fmt.Fprintf(&b, "Withdrawn: %s\n", FormatCards(deck.Pile{s.Withdrawn()}))
	return b.String()
}

// Describe narrates a played turn for viewer. Hidden information only shows
// up for the players entitled to it.
func Describe(a game.Action, out game.Outcome, viewer int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", who(a.Player, viewer, true), verb(a.Player, viewer, "play", "plays"), CardStyle(a.Card).Render(a.Card.String()))
	if a.Target != 0 {
		fmt.Fprintf(&b, " on %s", who(a.Target, viewer, false))
	}
	if a.Guess != deck.None {
		fmt.Fprintf(&b, ", guessing %s", a.Guess)
	}

	switch {
	case out.Fizzled:
		b.WriteString(": no effect")
	case a.Card == deck.Guard && !out.Hit:
		b.WriteString(": wrong")
	case out.Revealed != deck.None && a.Player == viewer:
		fmt.Fprintf(&b, ": they hold %s", CardStyle(out.Revealed).Render(out.Revealed.String()))
	case out.Drew != deck.None && a.Target == viewer:
		fmt.Fprintf(&b, ": you draw %s", CardStyle(out.Drew).Render(out.Drew.String()))
	}

	for _, p := range out.Eliminated {
		fmt.Fprintf(&b, "\n  %s", ErrorStyle.Render(fmt.Sprintf("%s %s out", who(p, viewer, true), verb(p, viewer, "are", "is"))))
	}
	return b.String()
}

func who(p, viewer int, subject bool) string {
	if p == viewer {
		if subject {
			return "You"
		}
		return "you"
	}
	return fmt.Sprintf("Player %d", p)
}

func verb(p, viewer int, second, third string) string {
	if p == viewer {
		return second
	}
	return third
}
