// Package testutil provides shared fixtures for deterministic tests.
package testutil

import "math/rand"

// NewRNG returns a seeded generator with the same construction the
// simulator uses, so helper draws line up with simulator draws.
func NewRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
