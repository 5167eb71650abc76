package domain

import (
	"math/rand"
	"sync"
	"time"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

const randomDrawAttempts = 10

// randomSelector picks uniformly among satisfying candidates, or draws random slots
type randomSelector struct {
	baseSelector
	mu  sync.Mutex
	rng *rand.Rand
}

func newRandomSelector(rng *rand.Rand) *randomSelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &randomSelector{
		baseSelector: baseSelector{
			strategy:    StrategyRandom,
			description: "Selects random available locations",
		},
		rng: rng,
	}
}

func (s *randomSelector) Select(req SelectionRequest) (*shared.BinLocation, error) {
	if req.Query.HasCandidates() {
		var eligible []shared.BinLocation
		for _, loc := range req.Query.Candidates() {
			if req.satisfied(req.contextFor(loc)) {
				eligible = append(eligible, loc)
			}
		}
		if len(eligible) == 0 {
			return nil, nil
		}
		loc := eligible[s.intn(len(eligible))]
		return &loc, nil
	}

	space := RandomDrawSpace()
	for i := 0; i < randomDrawAttempts; i++ {
		loc := space[s.intn(len(space))]
		if req.satisfied(req.contextFor(loc)) {
			return &loc, nil
		}
	}
	return nil, nil
}

// CandidateSpace is every location a random draw for query can land on
func (s *randomSelector) CandidateSpace(query LocationQuery) []shared.BinLocation {
	if query.HasCandidates() {
		return query.Candidates()
	}
	return RandomDrawSpace()
}

func (s *randomSelector) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
