package feed

import "math/rand/v2"

// Picker chooses one index among n candidate message strings. Isolating the
// choice behind an interface keeps Compose a pure function of its inputs:
// production uses a seeded PRNG, tests pin the pick.
type Picker interface {
	Pick(n int) int
}

// RandomPicker selects uniformly at random.
type RandomPicker struct {
	rng *rand.Rand
}

// NewRandomPicker creates a picker seeded from the given values. The same
// seed always reproduces the same sequence of picks.
func NewRandomPicker(seed1, seed2 uint64) *RandomPicker {
	return &RandomPicker{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Pick returns a uniform index in [0, n). Returns 0 when n <= 1.
func (p *RandomPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return p.rng.IntN(n)
}

// FirstPicker always chooses index 0. Used in tests and as the fallback when
// no picker is configured.
type FirstPicker struct{}

// Pick returns 0.
func (FirstPicker) Pick(int) int { return 0 }
