package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/loveletter/internal/auth"
	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/match"
)

// MessageType names a WebSocket message.
type MessageType string

const (
	// Client to server
	MessageTypePlay      MessageType = "play"
	MessageTypeNextRound MessageType = "next_round"

	// Server to client
	MessageTypeState     MessageType = "state"
	MessageTypeReveal    MessageType = "reveal"
	MessageTypeRoundOver MessageType = "round_over"
	MessageTypeError     MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every WebSocket message in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage wraps data in an envelope stamped with the current time.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// PlayData is a turn. Target 0 and Guess 0 mean none. Revision is the
// revision of the state the client decided on.
type PlayData struct {
	Card     deck.Card `json:"card"`
	Target   int       `json:"target"`
	Guess    deck.Card `json:"guess"`
	Revision uint64    `json:"revision"`
}

// StateData is the recipient's view of the match after a change.
type StateData = match.Status

// RevealData tells a Priest's player which card the target holds.
type RevealData struct {
	Player int       `json:"player"`
	Card   deck.Card `json:"card"`
}

// RoundOverData announces a decided round. Winner is 0 for a tied round.
type RoundOverData struct {
	Round       int            `json:"round"`
	Winner      int            `json:"winner"`
	Reason      game.WinReason `json:"reason"`
	MatchWinner int            `json:"match_winner,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRequest is the body of POST /games.
type CreateRequest struct {
	GroupSize int `json:"group_size"`
}

// errorCode maps an error to the short code sent to clients.
func errorCode(err error) string {
	switch {
	case game.IsInvariant(err):
		return "internal"
	case errors.Is(err, game.ErrInvalidGroupSize):
		return "invalid_group_size"
	case errors.Is(err, game.ErrNotPlayersTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrIllegalCard):
		return "illegal_card"
	case errors.Is(err, game.ErrIllegalTarget):
		return "illegal_target"
	case errors.Is(err, game.ErrIllegalGuess):
		return "illegal_guess"
	case errors.Is(err, game.ErrRoundOver):
		return "round_over"
	case errors.Is(err, match.ErrStaleRevision):
		return "stale_revision"
	case errors.Is(err, match.ErrRoundInProgress):
		return "round_in_progress"
	case errors.Is(err, match.ErrMatchOver):
		return "match_over"
	case errors.Is(err, match.ErrMatchFull):
		return "match_full"
	case errors.Is(err, match.ErrNotFound):
		return "not_found"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid_token"
	default:
		return "internal"
	}
}
