// Package auth issues and checks the per-seat capability tokens that let a
// player act in a match. Holding a seat's token is the only credential.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates the token matches no claimed seat.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrNoFreeSeat indicates every seat has already been claimed.
	ErrNoFreeSeat = errors.New("auth: no free seat")
)

// NewToken returns a fresh random (version 4) token.
func NewToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return id.String(), nil
}

// Seats holds one token per seat, indexed by player number minus one. An
// empty string marks a seat nobody has claimed yet.
type Seats []string

// NewSeats returns n unclaimed seats.
func NewSeats(n int) Seats {
	return make(Seats, n)
}

// Claim gives the lowest free seat a new token and returns the player number
// and token.
func (s Seats) Claim() (int, string, error) {
	for i, tok := range s {
		if tok != "" {
			continue
		}
		token, err := NewToken()
		if err != nil {
			return 0, "", err
		}
		s[i] = token
		return i + 1, token, nil
	}
	return 0, "", ErrNoFreeSeat
}

// Free reports how many seats are still unclaimed.
func (s Seats) Free() int {
	n := 0
	for _, tok := range s {
		if tok == "" {
			n++
		}
	}
	return n
}

// Player returns the player number the token belongs to. Every seat is
// compared so the time taken does not depend on which seat matched.
func (s Seats) Player(token string) (int, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	player := 0
	for i, tok := range s {
		if tok == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(tok), []byte(token)) == 1 {
			player = i + 1
		}
	}
	if player == 0 {
		return 0, ErrInvalidToken
	}
	return player, nil
}

// Token returns the token for player, or "" when the seat is unclaimed or out
// of range.
func (s Seats) Token(player int) string {
	if player < 1 || player > len(s) {
		return ""
	}
	return s[player-1]
}
