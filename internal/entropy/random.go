// Package entropy provides the random sources that drive stochastic garden
// events. Seeded sources reproduce exact hazard sequences; the crypto source
// is used for unseeded production runs.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	mrand "math/rand/v2"
)

// Source yields uniform floats in [0, 1). *math/rand/v2.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSeeded returns a deterministic PCG source. Equal seeds produce equal
// sequences across runs and platforms.
func NewSeeded(seed int64) *mrand.Rand {
	// Non-cryptographic PRNG is intentional for reproducible simulation runs.
	// #nosec G404
	return mrand.New(mrand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// Crypto draws from crypto/rand. The zero value is ready to use.
type Crypto struct{}

// Float64 returns a uniform float64 in [0, 1).
func (Crypto) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// ForSeed returns a seeded source for a non-zero seed and the crypto source
// otherwise.
func ForSeed(seed int64) Source {
	if seed == 0 {
		return Crypto{}
	}
	return NewSeeded(seed)
}

// Sequence replays fixed values and then repeats the last one. Tests use it
// to force specific rolls.
type Sequence struct {
	Values []float64
	pos    int
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	if s.pos >= len(s.Values) {
		return s.Values[len(s.Values)-1]
	}
	v := s.Values[s.pos]
	s.pos++
	return v
}
