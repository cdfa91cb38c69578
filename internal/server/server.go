package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/loveletter/internal/auth"
	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/match"
	"golang.org/x/sync/errgroup"
)

const (
	maxBodySize     = 1 << 10
	shutdownTimeout = 5 * time.Second
)

// Server exposes a match manager over HTTP and WebSocket.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	manager     *match.Manager
	logger      *log.Logger
	httpServer  *http.Server
	mu          sync.RWMutex
	connections map[*Connection]struct{}
}

// NewServer creates a server for manager listening on addr.
func NewServer(addr string, manager *match.Manager, logger *log.Logger) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Seats are authenticated by token, not by origin.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		manager:     manager,
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]struct{}),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /games", s.handleCreate)
	mux.HandleFunc("POST /games/{code}/join", s.handleJoin)
	mux.HandleFunc("GET /games/{code}", s.handleStatus)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ListenAndServe listens on the server's address and serves until ctx is
// done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and runs the manager's idle sweeper until
// ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.manager.Run(ctx)
	})
	g.Go(func() error {
		s.logger.Info("Starting server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops accepting requests and closes every WebSocket.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	return err
}

// ConnectionCount returns the number of open WebSockets.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "match", conn.match.Code, "player", conn.player, "total", total)
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client disconnected", "match", conn.match.Code, "player", conn.player, "total", total)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_message", "Failed to parse request body")
		return
	}

	seat, err := s.manager.Create(r.Context(), req.GroupSize)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, seat)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	seat, err := s.manager.Join(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, seat)
}

// handleStatus returns the match as the token's seat sees it, or a spectator
// view without a token.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	token := r.URL.Query().Get("token")

	if token == "" {
		mt, err := s.manager.Get(r.Context(), code)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, mt.Status(0))
		return
	}

	mt, player, err := s.manager.Authenticate(r.Context(), code, token)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mt.Status(player))
}

// handleWebSocket authenticates the seat before upgrading.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mt, player, err := s.manager.Authenticate(r.Context(), q.Get("code"), q.Get("token"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.manager, mt, player)
	client.onClose = s.unregister
	s.register(client)
	client.Start()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("Failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorData{Code: code, Message: message})
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}
	s.writeError(w, status, errorCode(err), err.Error())
}

func httpStatus(err error) int {
	switch {
	case game.IsInvariant(err):
		return http.StatusInternalServerError
	case errors.Is(err, match.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, match.ErrMatchFull):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidGroupSize):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
