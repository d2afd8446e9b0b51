// Package synthetic serves placeholder data for features that have no real
// upstream yet. Nothing produced here reflects on-chain state.
package synthetic

import (
	"math/rand"
	"sync"
	"time"
)

// lockedRand serialises access to a *rand.Rand shared between requests.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(r *rand.Rand) *lockedRand {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &lockedRand{rng: r}
}

func (l *lockedRand) with(fn func(r *rand.Rand)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.rng)
}
