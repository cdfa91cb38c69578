// Package randutil provides the seedable randomness used to deal rounds.
//
// The generator is xoshiro256** seeded through splitmix64, and ranges are
// drawn by rejection sampling exactly as recorded rounds were produced, so a
// given seed always replays the same deal.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15

	// maxAttempts bounds rejection sampling; hitting it means the source is broken.
	maxAttempts = 50
)

// Source is the randomness capability consumed when a round is set up.
type Source interface {
	// Shuffle permutes n elements uniformly using swap.
	Shuffle(n int, swap func(i, j int))
	// IntRange returns a uniform integer in [lo, hi].
	IntRange(lo, hi int) int
}

// Xoshiro256 is the xoshiro256** generator. It satisfies math/rand/v2.Source.
type Xoshiro256 struct {
	s [4]uint64
}

// NewXoshiro256 seeds the generator by running splitmix64 four times over seed.
func NewXoshiro256(seed uint64) *Xoshiro256 {
	x := &Xoshiro256{}
	for i := range x.s {
		seed += goldenRatio64
		x.s[i] = mix(seed)
	}
	return x
}

// Uint64 returns the next 64-bit output.
func (x *Xoshiro256) Uint64() uint64 {
	s := &x.s
	result := bits.RotateLeft64(s[1]*5, 7) * 9
	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Rand implements Source on top of a 64-bit generator.
type Rand struct {
	gen *Xoshiro256
}

// New returns a deterministic Rand for the given seed.
func New(seed int64) *Rand {
	return &Rand{gen: NewXoshiro256(uint64(seed))}
}

// NewRandom returns a Rand seeded from crypto/rand.
func NewRandom() (*Rand, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Uint64 exposes the raw generator so a Rand can back math/rand/v2.
func (r *Rand) Uint64() uint64 {
	return r.gen.Uint64()
}

// IntRange returns a uniform integer in [lo, hi]. It panics if hi < lo.
func (r *Rand) IntRange(lo, hi int) int {
	if hi < lo {
		panic(fmt.Sprintf("randutil: invalid range [%d, %d]", lo, hi))
	}
	umax := uint64(hi) - uint64(lo)
	var n uint64
	if umax > math.MaxUint32 {
		n = r.range64(umax)
	} else {
		n = uint64(r.range32(uint32(umax)))
	}
	return int(n + uint64(lo))
}

// Shuffle walks from the last element down, swapping each with a uniformly
// chosen element at or below it.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.IntRange(0, i)
		if j != i {
			swap(i, j)
		}
	}
}

func (r *Rand) range32(umax uint32) uint32 {
	// Only the low 32 bits of each output are used.
	result := uint32(r.gen.Uint64())
	if umax == math.MaxUint32 {
		return result
	}
	umax++
	if umax&(umax-1) == 0 {
		return result & (umax - 1)
	}

	limit := math.MaxUint32 - (math.MaxUint32 % umax) - 1
	for attempts := 0; result > limit; attempts++ {
		if attempts >= maxAttempts {
			panic("randutil: rejection sampling did not converge")
		}
		result = uint32(r.gen.Uint64())
	}
	return result % umax
}

func (r *Rand) range64(umax uint64) uint64 {
	result := r.gen.Uint64()
	if umax == math.MaxUint64 {
		return result
	}
	umax++
	if umax&(umax-1) == 0 {
		return result & (umax - 1)
	}

	limit := math.MaxUint64 - (math.MaxUint64 % umax) - 1
	for attempts := 0; result > limit; attempts++ {
		if attempts >= maxAttempts {
			panic("randutil: rejection sampling did not converge")
		}
		result = r.gen.Uint64()
	}
	return result % umax
}
