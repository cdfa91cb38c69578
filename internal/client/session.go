package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/loveletter/internal/bot"
	"github.com/lox/loveletter/internal/match"
	"github.com/lox/loveletter/internal/server"
)

const writeWait = 10 * time.Second

// Session is one seat's WebSocket.
type Session struct {
	conn   *websocket.Conn
	seat   match.Seat
	logger *log.Logger

	lastPlayed uint64
	nextAsked  int
}

// Seat returns the seat the session plays.
func (s *Session) Seat() match.Seat {
	return s.seat
}

// Close closes the connection.
func (s *Session) Close() error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}

// Play lets b play the seat until the match has a winner, and returns it.
// Each decided round is followed by a request for the next one; whichever
// seat asks first deals it.
func (s *Session) Play(ctx context.Context, b bot.Bot) (int, error) {
	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()

	for {
		var msg server.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, fmt.Errorf("read: %w", err)
		}

		switch msg.Type {
		case server.MessageTypeState:
			var st server.StateData
			if err := json.Unmarshal(msg.Data, &st); err != nil {
				return 0, fmt.Errorf("decode state: %w", err)
			}
			if st.Winner != 0 {
				s.logger.Info("Match over", "winner", st.Winner, "rounds", st.Round)
				return st.Winner, nil
			}
			if err := s.onState(st, b); err != nil {
				return 0, err
			}

		case server.MessageTypeReveal:
			var data server.RevealData
			if err := json.Unmarshal(msg.Data, &data); err == nil {
				s.logger.Debug("Saw card", "target", data.Player, "card", data.Card)
			}

		case server.MessageTypeRoundOver:
			var data server.RoundOverData
			if err := json.Unmarshal(msg.Data, &data); err == nil {
				s.logger.Info("Round over", "round", data.Round, "winner", data.Winner, "reason", data.Reason)
			}

		case server.MessageTypeError:
			var data server.ErrorData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return 0, fmt.Errorf("decode error: %w", err)
			}
			switch data.Code {
			case "stale_revision", "round_in_progress":
				// A fresh state follows or another seat already dealt.
				s.logger.Debug("Request refused", "code", data.Code)
			default:
				return 0, fmt.Errorf("server refused request: %s: %s", data.Code, data.Message)
			}
		}
	}
}

func (s *Session) onState(st server.StateData, b bot.Bot) error {
	if len(st.History) >= st.Round {
		if s.nextAsked >= st.Round {
			return nil
		}
		s.nextAsked = st.Round
		return s.send(server.MessageTypeNextRound, struct{}{})
	}

	legal := st.View.LegalActions()
	if len(legal) == 0 || st.Revision <= s.lastPlayed {
		return nil
	}
	a := b.Choose(st.View, legal)
	s.lastPlayed = st.Revision
	s.logger.Debug("Playing", "card", a.Card, "target", a.Target, "guess", a.Guess, "revision", st.Revision)
	return s.send(server.MessageTypePlay, server.PlayData{
		Card:     a.Card,
		Target:   a.Target,
		Guess:    a.Guess,
		Revision: st.Revision,
	})
}

func (s *Session) send(messageType server.MessageType, data any) error {
	msg, err := server.NewMessage(messageType, data)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}
