package usecase

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

// Sampler draws memories by weighted random sampling without replacement.
// Each memory weighs 1+ReactionCount, so unreacted memories keep a chance of
// being picked while popular ones come back more often.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler creates a sampler. A nil rng uses a randomly seeded source.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{rng: rng}
}

// Sample returns min(count, len(candidates)) distinct memories in the order
// they were drawn. Candidates are walked in ascending ID order so that a
// seeded source reproduces the same result.
func (s *Sampler) Sample(candidates []*model.Memory, count int) []*model.Memory {
	if count <= 0 || len(candidates) == 0 {
		return []*model.Memory{}
	}

	pool := make([]*model.Memory, len(candidates))
	copy(pool, candidates)
	sort.Slice(pool, func(i, j int) bool {
		return pool[i].ID < pool[j].ID
	})

	if count > len(pool) {
		count = len(pool)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make([]*model.Memory, 0, count)
	for len(selected) < count {
		idx := s.pick(pool)
		selected = append(selected, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return selected
}

// pick returns the index of one weighted draw from pool. Must be called with mu held.
func (s *Sampler) pick(pool []*model.Memory) int {
	var total float64
	for _, m := range pool {
		total += m.Weight()
	}

	r := s.rng.Float64() * total
	for i, m := range pool {
		r -= m.Weight()
		if r <= 0 {
			return i
		}
	}

	// Rounding left a positive remainder
	return len(pool) - 1
}
