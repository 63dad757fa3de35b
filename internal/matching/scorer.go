package matching

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pulsehustle/pulsehustle/internal/profile"
)

// Scorer ranks a candidate profile against a gig. The shipped
// implementation is a uniform-random stand-in; the narrow interface is
// the seam where a real skill-matching model plugs in.
type Scorer interface {
	Score(p *profile.Profile, gigID string) float64
}

// RandomScorer assigns each profile a uniform score in [0,100).
type RandomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomScorer() *RandomScorer {
	return &RandomScorer{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededScorer returns a deterministic scorer for tests.
func NewSeededScorer(seed int64) *RandomScorer {
	return &RandomScorer{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomScorer) Score(_ *profile.Profile, _ string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() * 100
}
