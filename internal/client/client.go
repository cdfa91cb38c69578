// Package client talks to a match server: it creates and joins matches over
// HTTP and plays seats over WebSocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/loveletter/internal/match"
	"github.com/lox/loveletter/internal/server" // Reuse message types
)

// APIError is an error response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server: %s (%d): %s", e.Code, e.Status, e.Message)
}

// Client is an HTTP client for one server.
type Client struct {
	serverURL *url.URL
	http      *http.Client
	logger    *log.Logger
}

// New returns a client for the server at serverURL, e.g.
// "http://localhost:8080".
func New(serverURL string, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", serverURL)
	}
	return &Client{
		serverURL: u,
		http:      &http.Client{Timeout: 10 * time.Second},
		logger:    logger.WithPrefix("client"),
	}, nil
}

// Create starts a match and returns the creator's seat.
func (c *Client) Create(ctx context.Context, groupSize int) (match.Seat, error) {
	body, err := json.Marshal(server.CreateRequest{GroupSize: groupSize})
	if err != nil {
		return match.Seat{}, err
	}
	var seat match.Seat
	err = c.post(ctx, "/games", body, &seat)
	return seat, err
}

// Join claims the next free seat in a match.
func (c *Client) Join(ctx context.Context, code string) (match.Seat, error) {
	var seat match.Seat
	err := c.post(ctx, "/games/"+url.PathEscape(code)+"/join", nil, &seat)
	return seat, err
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	u := c.serverURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var data server.ErrorData
		_ = json.NewDecoder(resp.Body).Decode(&data)
		return &APIError{Status: resp.StatusCode, Code: data.Code, Message: data.Message}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Connect opens the WebSocket for seat.
func (c *Client) Connect(ctx context.Context, seat match.Seat) (*Session, error) {
	u := *c.serverURL
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"code": {seat.Code}, "token": {seat.Token}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Code: "handshake", Message: err.Error()}
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c.logger.Info("Connected to match", "match", seat.Code, "player", seat.Player)
	return &Session{
		conn:   conn,
		seat:   seat,
		logger: c.logger.With("match", seat.Code, "player", seat.Player),
	}, nil
}
