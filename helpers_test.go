package bloomgo

import (
	"math/rand/v2"
	"testing"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newTestRand returns the deterministic generator used by the accuracy
// scenarios.
func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(37, 0))
}

// randomItems generates n distinct non-empty alphanumeric strings of
// random length.
func randomItems(t *testing.T, rng *rand.Rand, n int) [][]byte {
	t.Helper()
	seen := make(map[string]struct{}, n)
	items := make([][]byte, 0, n)
	for len(items) < n {
		b := make([]byte, 1+rng.IntN(24))
		for i := range b {
			b[i] = alphanumeric[rng.IntN(len(alphanumeric))]
		}
		if _, dup := seen[string(b)]; dup {
			continue
		}
		seen[string(b)] = struct{}{}
		items = append(items, b)
	}
	return items
}
