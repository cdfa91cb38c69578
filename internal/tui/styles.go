package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/loveletter/internal/deck"
	"github.com/muesli/termenv"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// cardColors gives each rank its own colour, low ranks cool and high ranks
// warm.
var cardColors = map[deck.Card]lipgloss.Color{
	deck.Guard:    "#A0A0A0",
	deck.Priest:   "#6FA8DC",
	deck.Baron:    "#76C7C0",
	deck.Handmaid: "#96CEB4",
	deck.Prince:   "#FFD966",
	deck.King:     "#F6B26B",
	deck.Countess: "#E06666",
	deck.Princess: "#FF6BCB",
}

// CardStyle returns the style a card is drawn in.
func CardStyle(c deck.Card) lipgloss.Style {
	color, ok := cardColors[c]
	if !ok {
		return InfoStyle
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

// SetupColor picks the colour profile for w, or plain text when noColor is
// set.
func SetupColor(w io.Writer, noColor bool) {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
}
