// Package fallback holds the known-good media used when resolution fails
// and the default queue a fresh session starts from.
package fallback

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// Pool picks uniformly among a fixed set of media ids.
type Pool struct {
	mu  sync.Mutex
	ids []string
	rng *rand.Rand
}

// NewPool builds a pool seeded with seed. ids must be non-empty.
func NewPool(ids []string, seed int64) (*Pool, error) {
	if len(ids) == 0 {
		return nil, errors.New("fallback: pool needs at least one id")
	}
	cp := make([]string, len(ids))
	copy(cp, ids)
	return &Pool{ids: cp, rng: rand.New(rand.NewSource(seed))}, nil
}

// Default returns a time-seeded pool over the default songs.
func Default() *Pool {
	p, _ := NewPool(DefaultIDs(), time.Now().UnixNano())
	return p
}

// Pick returns one id. It is safe for concurrent use.
func (p *Pool) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ids[p.rng.Intn(len(p.ids))]
}

// Size returns the number of ids in the pool.
func (p *Pool) Size() int {
	return len(p.ids)
}
