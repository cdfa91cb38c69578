package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/loveletter/internal/deck"
	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/match"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBuffer = 64
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one seated player's WebSocket. It forwards the player's
// turns to the manager and pushes the player's view after every change.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	onClose   func(*Connection)

	manager *match.Manager
	match   *match.Match
	player  int
}

// NewConnection wraps an upgraded socket for player in mt.
func NewConnection(conn *websocket.Conn, logger *log.Logger, manager *match.Manager, mt *match.Match, player int) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, sendBuffer),
		logger:  logger.WithPrefix("conn").With("match", mt.Code, "player", player),
		ctx:     ctx,
		cancel:  cancel,
		manager: manager,
		match:   mt,
		player:  player,
	}
}

// Start sends the current state and begins handling the connection.
func (c *Connection) Start() {
	events, unsubscribe := c.manager.Subscribe(c.match.Code)

	go c.writePump()
	go c.readPump()
	go c.forward(events, unsubscribe)

	c.sendState()
}

// Close closes the connection. It is safe to call more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
	return err
}

// SendMessage queues msg for the client. A client that cannot keep up is
// disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// forward turns match events into messages for this player. The events
// channel closes when the match is swept, which ends the connection.
func (c *Connection) forward(events <-chan match.Event, unsubscribe func()) {
	defer unsubscribe()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				c.logger.Info("Match closed")
				_ = c.Close()
				return
			}
			c.handleEvent(ev)
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleEvent(ev match.Event) {
	c.sendState()

	if ev.Kind != match.EventTurn {
		return
	}
	if ev.Player == c.player && ev.Outcome != nil && ev.Outcome.Revealed != deck.None {
		c.sendData(MessageTypeReveal, RevealData{Player: ev.Action.Target, Card: ev.Outcome.Revealed})
	}
	if ev.Resolution != nil {
		st := c.match.Status(c.player)
		c.sendData(MessageTypeRoundOver, RoundOverData{
			Round:       st.Round,
			Winner:      ev.Resolution.Winner,
			Reason:      ev.Resolution.Reason,
			MatchWinner: st.Winner,
		})
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypePlay:
		var data PlayData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play data")
			return
		}
		c.handlePlay(data)

	case MessageTypeNextRound:
		if err := c.manager.NextRound(c.ctx, c.match.Code, c.player); err != nil {
			c.sendFailure(err)
		}

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handlePlay(data PlayData) {
	a := game.Action{
		Player: c.player,
		Card:   data.Card,
		Target: data.Target,
		Guess:  data.Guess,
	}
	if _, err := c.manager.Play(c.ctx, c.match.Code, c.player, a, data.Revision); err != nil {
		c.sendFailure(err)
	}
}

func (c *Connection) sendState() {
	c.sendData(MessageTypeState, c.match.Status(c.player))
}

func (c *Connection) sendData(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// sendFailure reports a refused request. Stale clients also get a fresh
// state so they can retry.
func (c *Connection) sendFailure(err error) {
	code := errorCode(err)
	if code == "internal" {
		c.logger.Error("Request failed", "error", err)
	} else {
		c.logger.Debug("Request refused", "code", code, "error", err)
	}
	c.sendError(code, err.Error())
	if errors.Is(err, match.ErrStaleRevision) {
		c.sendState()
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.sendData(MessageTypeError, ErrorData{Code: code, Message: message})
}
