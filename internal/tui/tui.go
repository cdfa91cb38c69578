// Package tui is a terminal Love Letter game: the human holds seat 1 and
// bots fill the other seats.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/loveletter/internal/bot"
	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/match"
	"github.com/lox/loveletter/internal/randutil"
)

const (
	DefaultBotDelay = 700 * time.Millisecond

	human = 1
)

// Options configures a terminal game.
type Options struct {
	Players int
	// Bots names the bots for seats 2 and up. A single name fills every
	// bot seat.
	Bots     []string
	Seed     int64
	BotDelay time.Duration
}

// botTurnMsg asks the model to let the active bot play.
type botTurnMsg struct{}

// Model is the Bubble Tea model for a hot-seat match against bots.
type Model struct {
	logger *log.Logger

	state       *game.State
	bots        map[int]bot.Bot
	botNames    map[int]string
	seed        int64
	round       int
	roundOver   bool
	matchWinner int
	botDelay    time.Duration

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model
	gameLog     []string
	focusedPane int // 0 = log, 1 = input
	quitting    bool

	// Dimensions
	width  int
	height int
}

// New deals the first round of a match.
func New(logger *log.Logger, opts Options) (*Model, error) {
	st, err := game.New(opts.Players, randutil.New(opts.Seed))
	if err != nil {
		return nil, err
	}

	m := &Model{
		logger:   logger.WithPrefix("tui"),
		state:    st,
		bots:     make(map[int]bot.Bot),
		botNames: make(map[int]string),
		seed:     opts.Seed,
		round:    1,
		botDelay: opts.BotDelay,
	}
	for p := human + 1; p <= opts.Players; p++ {
		name := "careful"
		switch {
		case len(opts.Bots) == 1:
			name = opts.Bots[0]
		case len(opts.Bots) > p-2:
			name = opts.Bots[p-2]
		}
		b, err := bot.New(name, opts.Seed+int64(p))
		if err != nil {
			return nil, err
		}
		m.bots[p] = b
		m.botNames[p] = name
	}

	m.logViewport = viewport.New(10, 5)
	m.actionInput = textinput.New()
	m.actionInput.Focus()
	m.actionInput.CharLimit = 40
	m.actionInput.Width = 60
	m.actionInput.Prompt = "> "
	m.actionInput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	m.focusedPane = 1

	m.logRoundStart()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.nextStep())
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case botTurnMsg:
		return m, m.playBot()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := m.actionInput.Value()
				m.actionInput.SetValue("")
				return m, m.Submit(input)
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit handles a line typed by the human.
func (m *Model) Submit(input string) tea.Cmd {
	input = strings.ToLower(strings.TrimSpace(input))

	switch {
	case input == "quit" || input == "q":
		m.quitting = true
		return tea.Quit
	case input == "help" || input == "?":
		m.showHelp()
		return nil
	case m.matchWinner != 0:
		m.AddLogEntry(InfoStyle.Render("The match is over. Type quit to exit."))
		return nil
	case m.roundOver:
		return m.startRound()
	case m.state.Active() != human:
		m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Waiting for player %d.", m.state.Active())))
		return nil
	case input == "":
		m.showHelp()
		return nil
	}

	a, err := ParseAction(input, human)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}
	return m.play(a)
}

// nextStep schedules a bot turn when a bot is to play.
func (m *Model) nextStep() tea.Cmd {
	if m.roundOver || m.matchWinner != 0 {
		return nil
	}
	p := m.state.Active()
	if p == 0 || p == human {
		return nil
	}
	if m.botDelay <= 0 {
		return func() tea.Msg { return botTurnMsg{} }
	}
	return tea.Tick(m.botDelay, func(time.Time) tea.Msg { return botTurnMsg{} })
}

func (m *Model) playBot() tea.Cmd {
	p := m.state.Active()
	b, ok := m.bots[p]
	if !ok || m.roundOver {
		return nil
	}
	legal := m.state.LegalActions()
	if len(legal) == 0 {
		m.logger.Error("Bot has no legal action", "player", p)
		return nil
	}
	return m.play(b.Choose(m.state.View(p), legal))
}

func (m *Model) play(a game.Action) tea.Cmd {
	turn, err := m.state.Play(a)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		if game.IsInvariant(err) {
			m.logger.Error("Engine rejected turn", "action", a, "error", err)
		}
		return nil
	}
	m.AddLogEntry(Describe(a, turn.Outcome, human))

	if m.state.Active() == 0 {
		m.finishRound()
		return nil
	}
	if m.state.Active() == human {
		m.AddLogEntry(HandInfoStyle.Render("Your turn: " + FormatCards(m.state.Hand(human))))
	}
	return m.nextStep()
}

func (m *Model) finishRound() {
	m.roundOver = true
	res, err := m.state.Conclude()
	switch {
	case errors.Is(err, game.ErrCorruptState) && len(m.state.Alive()) > 1:
		m.AddLogEntry(WarningStyle.Render("The round is tied. Nobody scores."))
	case err != nil:
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		m.logger.Error("Round could not be resolved", "round", m.round, "error", err)
		return
	default:
		m.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("%s the round (%s).", winsText(res.Winner), res.Reason)))
	}

	for _, p := range m.state.Alive() {
		if p != human {
			m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("  Player %d held %s", p, FormatCards(m.state.Hand(p)))))
		}
	}

	need := match.TokensToWin(m.state.GroupSize())
	for p := 1; p <= m.state.GroupSize(); p++ {
		if m.state.Chips(p) >= need {
			m.matchWinner = p
		}
	}
	if m.matchWinner != 0 {
		m.AddBoldLogEntry(fmt.Sprintf("%s the match!", winsText(m.matchWinner)))
		return
	}
	m.AddLogEntry(InfoStyle.Render("Press Enter for the next round."))
}

func (m *Model) startRound() tea.Cmd {
	m.seed++
	if err := m.state.Reset(randutil.New(m.seed)); err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}
	m.round++
	m.roundOver = false
	m.logRoundStart()
	return m.nextStep()
}

func (m *Model) logRoundStart() {
	m.logger.Debug("Round dealt", "round", m.round, "seed", m.seed)
	m.AddBoldLogEntry(fmt.Sprintf("Round %d", m.round))
	m.AddLogEntry(HandInfoStyle.Render("Your hand: " + FormatCards(m.state.Hand(human))))
	if m.state.Active() == human {
		m.AddLogEntry(HandInfoStyle.Render("Your turn."))
	}
}

func (m *Model) showHelp() {
	m.AddLogEntry(InfoStyle.Render("Play a card with: card [target] [guess], e.g. \"guard 2 priest\" or \"1 2 2\"."))
}

func winsText(p int) string {
	if p == human {
		return "You win"
	}
	return fmt.Sprintf("Player %d wins", p)
}

// ParseAction reads "card [target] [guess]" for player. Cards are names or
// ranks.
func ParseAction(input string, player int) (game.Action, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 || len(fields) > 3 {
		return game.Action{}, fmt.Errorf("expected: card [target] [guess]")
	}

	card, err := deck.Parse(fields[0])
	if err != nil {
		return game.Action{}, err
	}
	a := game.Action{Player: player, Card: card}

	if len(fields) > 1 {
		target, err := strconv.Atoi(fields[1])
		if err != nil {
			return game.Action{}, fmt.Errorf("invalid target %q", fields[1])
		}
		a.Target = target
	}
	if len(fields) > 2 {
		if a.Guess, err = deck.Parse(fields[2]); err != nil {
			return game.Action{}, err
		}
	}
	return a, nil
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(1, m.width-2)).
		Render(actionContent)

	sidebar := PlayersTable(m.state.View(human))
	sidebarWidth := lipgloss.Width(sidebar)

	logWidth := max(1, m.width-sidebarWidth-2)
	logHeight := max(1, m.height-actionHeight-4)
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logStyle.Render(m.logViewport.View()), sidebar)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) renderActionPane() string {
	var content strings.Builder
	v := m.state.View(human)

	switch {
	case m.matchWinner != 0:
		content.WriteString(HandInfoStyle.Render("Match over"))
		m.actionInput.Placeholder = "quit to exit"
	case m.roundOver:
		content.WriteString(HandInfoStyle.Render("Round over"))
		m.actionInput.Placeholder = "Enter for the next round, quit to exit"
	case v.Active == human:
		content.WriteString(HandInfoStyle.Render("Hand: " + FormatCards(v.Hand)))
		content.WriteString("  ")
		content.WriteString(ActionsStyle.Render("Legal: " + FormatCards(v.LegalCards)))
		m.actionInput.Placeholder = "card [target] [guess]"
	default:
		content.WriteString(HandInfoStyle.Render("Hand: " + FormatCards(v.Hand)))
		content.WriteString("  ")
		content.WriteString(InfoStyle.Render(fmt.Sprintf("Player %d (%s) is thinking...", v.Active, m.botNames[v.Active])))
		m.actionInput.Placeholder = ""
	}
	content.WriteString("\n")
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))
	return content.String()
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// AddBoldLogEntry adds a highlighted entry to the game log
func (m *Model) AddBoldLogEntry(entry string) {
	m.AddLogEntry(HeaderStyle.Render(" " + entry + " "))
}

// Log returns the game log lines.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// State exposes the table, for tests and the end-of-match summary.
func (m *Model) State() *game.State {
	return m.state
}

// Round returns the current round number.
func (m *Model) Round() int {
	return m.round
}

// Winner returns the match winner, 0 while the match is still going.
func (m *Model) Winner() int {
	return m.matchWinner
}
