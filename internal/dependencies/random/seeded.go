package random

import "math/rand/v2"

// Seeded implements Random with a PCG generator so that a given seed and
// stream always yield the same sequence
type Seeded struct {
	rng *rand.Rand
}

// Ensure Seeded implements Random
var _ Random = (*Seeded)(nil)

// NewSeeded creates a reproducible generator for the given seed and stream
func NewSeeded(seed, stream uint64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewPCG(seed, stream))}
}

// Intn returns a pseudo-random int in [0, n)
func (r *Seeded) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.IntN(n)
}

// String generates a pseudo-random string of the given length from the given alphabet
func (r *Seeded) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.rng.IntN(len(alphabet))]
	}
	return string(result)
}

// Uint64 returns a pseudo-random 64-bit value
func (r *Seeded) Uint64() uint64 {
	return r.rng.Uint64()
}
