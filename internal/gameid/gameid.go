// Package gameid generates the codes that identify matches. A code is a
// UUIDv7 written as 26 characters of Crockford base32, so codes sort by
// creation time and are safe to put in URLs.
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32, lower case
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of every code.
const Length = 26

// Generate returns a new code using crypto/rand.
func Generate() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate game id: %w", err)
	}
	return Encode(id), nil
}

// GenerateFromReader returns a new code with its random bits read from r.
// Tests pass a fixed reader to get stable random bits; the timestamp still
// comes from the wall clock.
func GenerateFromReader(r io.Reader) (string, error) {
	id, err := uuid.NewV7FromReader(r)
	if err != nil {
		return "", fmt.Errorf("generate game id: %w", err)
	}
	return Encode(id), nil
}

// Encode writes the 128 bits of id as 26 base32 characters, most significant
// bits first with two zero bits of padding at the front.
func Encode(id uuid.UUID) string {
	var b strings.Builder
	b.Grow(Length)

	// 130 bits: two leading pad bits then the id.
	var acc uint
	bits := 2
	for _, v := range id {
		acc = acc<<8 | uint(v)
		bits += 8
		for bits >= 5 {
			bits -= 5
			b.WriteByte(alphabet[(acc>>uint(bits))&0x1f])
		}
	}
	return b.String()
}

// Decode reverses Encode.
func Decode(code string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := Validate(code); err != nil {
		return id, err
	}

	var acc uint
	bits := 0
	n := 0
	for i := 0; i < Length; i++ {
		acc = acc<<5 | uint(strings.IndexByte(alphabet, code[i]))
		bits += 5
		// The first character carries the two pad bits.
		if i == 0 {
			bits -= 2
			acc &= 0x7
		}
		if bits >= 8 {
			bits -= 8
			id[n] = byte(acc >> uint(bits))
			n++
		}
	}
	return id, nil
}

// Validate checks that code is 26 lower-case base32 characters whose first
// character fits in three bits.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("game id must be exactly %d characters, got %d", Length, len(code))
	}
	if code[0] > '7' {
		return fmt.Errorf("game id first character must be 0-7, got %c", code[0])
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(alphabet, code[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", code[i], i)
		}
	}
	return nil
}
