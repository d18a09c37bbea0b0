package domain

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Selector builds the ordered question list for a new exam attempt:
// filter, sample without replacement, then shuffle or restore bank order.
// Sampling without replacement guarantees no duplicate questions in one
// attempt; drawing and ordering are separate stages so "which questions"
// and "what order" stay independently testable.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector seeded from the current time.
func NewSelector() *Selector {
	return NewSeededSelector(time.Now().UnixNano())
}

// NewSeededSelector creates a selector with a fixed seed, for deterministic
// tests.
func NewSeededSelector(seed int64) *Selector {
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// Select filters the pool by kind and difficulty, then draws count
// questions uniformly without replacement. With randomize the drawn set is
// shuffled; otherwise it is ordered by the bank's order index. Returns
// InsufficientQuestions when the filtered pool is smaller than count.
func (s *Selector) Select(pool []*Question, count int, kinds []Kind, difficulties []Difficulty, randomize bool) ([]*Question, error) {
	if count <= 0 {
		return nil, NewInvalidInputError("question count must be positive")
	}

	filtered := filterQuestions(pool, kinds, difficulties)
	if len(filtered) < count {
		return nil, NewInsufficientQuestionsError(count, len(filtered))
	}

	s.mu.Lock()
	perm := s.rng.Perm(len(filtered))
	drawn := make([]*Question, count)
	for i := 0; i < count; i++ {
		drawn[i] = filtered[perm[i]]
	}
	if randomize {
		s.rng.Shuffle(len(drawn), func(i, j int) {
			drawn[i], drawn[j] = drawn[j], drawn[i]
		})
	}
	s.mu.Unlock()

	if !randomize {
		sort.SliceStable(drawn, func(i, j int) bool {
			return drawn[i].OrderIndex < drawn[j].OrderIndex
		})
	}
	return drawn, nil
}

func filterQuestions(pool []*Question, kinds []Kind, difficulties []Difficulty) []*Question {
	kindSet := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}
	difficultySet := make(map[Difficulty]bool, len(difficulties))
	for _, d := range difficulties {
		difficultySet[d] = true
	}

	var filtered []*Question
	for _, q := range pool {
		if len(kindSet) > 0 && !kindSet[q.Kind] {
			continue
		}
		if len(difficultySet) > 0 && !difficultySet[q.Difficulty] {
			continue
		}
		filtered = append(filtered, q)
	}
	return filtered
}
