package quiz

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
)

var (
	// ErrNoMatchingQuestions means the filter left nothing to ask.
	ErrNoMatchingQuestions = errors.New("no questions match the selected filters")
	// ErrInvalidSelection means the answer is not one of the question's option keys.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrInterrupted means the player left before the last question was scored.
	ErrInterrupted = errors.New("quiz interrupted")
	// ErrSessionComplete is returned when asking for more after the last question.
	ErrSessionComplete = errors.New("quiz session already complete")
)

// Filter narrows a bank down to the questions of one run.
type Filter struct {
	Count      int                 `json:"count,omitempty"` // <= 0 keeps every match
	Difficulty question.Difficulty `json:"difficulty,omitempty"`
	Category   string              `json:"category,omitempty"`
	Randomize  bool                `json:"randomize"`
}

// Selector applies filters. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a selector seeded from the clock.
func NewSelector() *Selector {
	return NewSeededSelector(time.Now().UnixNano())
}

// NewSeededSelector returns a selector with reproducible randomness.
func NewSeededSelector(seed int64) *Selector {
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// Select returns the questions matching f. Difficulty and category combine
// with AND; category matching ignores case.
func (s *Selector) Select(all []question.Question, f Filter) ([]question.Question, error) {
	matched := make([]question.Question, 0, len(all))
	for _, q := range all {
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		if f.Category != "" && !strings.EqualFold(q.Category, strings.TrimSpace(f.Category)) {
			continue
		}
		matched = append(matched, q)
	}
	if len(matched) == 0 {
		return nil, ErrNoMatchingQuestions
	}

	if f.Randomize {
		// A full shuffle followed by truncation is a uniform sample without replacement.
		s.mu.Lock()
		s.rng.Shuffle(len(matched), func(i, j int) {
			matched[i], matched[j] = matched[j], matched[i]
		})
		s.mu.Unlock()
	}
	if f.Count > 0 && f.Count < len(matched) {
		matched = matched[:f.Count]
	}
	return matched, nil
}
