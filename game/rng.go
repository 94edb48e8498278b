package game

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"strconv"
	"sync"
)

// Source produces uniform values in [0,1). Implementations must be safe for
// concurrent use: a seeded source may be shared across plays when an admin
// seed is configured.
type Source interface {
	Next() float64
}

// systemSource delegates to the process-wide non-deterministic generator.
type systemSource struct{}

func (systemSource) Next() float64 {
	return rand.Float64()
}

// NewSource returns a non-deterministic uniform source.
func NewSource() Source {
	return systemSource{}
}

// seededSource derives a deterministic stream from a string seed: the seed is
// hashed with SHA-256 and the hex digest is consumed in 8-character windows,
// each converted to a 32-bit fraction. When the digest is exhausted it is
// re-hashed to extend the stream. Same seed, same sequence, across processes.
type seededSource struct {
	mu     sync.Mutex
	digest string
	pos    int
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed string) Source {
	sum := sha256.Sum256([]byte(seed))
	return &seededSource{digest: hex.EncodeToString(sum[:])}
}

func (s *seededSource) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos+8 > len(s.digest) {
		sum := sha256.Sum256([]byte(s.digest))
		s.digest = hex.EncodeToString(sum[:])
		s.pos = 0
	}

	window := s.digest[s.pos : s.pos+8]
	s.pos += 8

	v, err := strconv.ParseUint(window, 16, 64)
	if err != nil {
		// Unreachable for a hex digest; keep the stream alive regardless.
		return 0
	}

	return float64(v) / float64(1<<32)
}
