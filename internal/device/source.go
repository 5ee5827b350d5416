package device

import "math/rand/v2"

// ValueSource produces the pseudo-random readings of simulated sensors.
// *rand.Rand from math/rand/v2 satisfies it, so tests can pass a seeded
// generator.
type ValueSource interface {
	IntN(n int) int
	Float64() float64
}

// defaultSource draws from the math/rand/v2 global generator.
type defaultSource struct{}

func (defaultSource) IntN(n int) int    { return rand.IntN(n) }
func (defaultSource) Float64() float64 { return rand.Float64() }

// DefaultSource returns the source devices use when none is configured.
func DefaultSource() ValueSource { return defaultSource{} }
