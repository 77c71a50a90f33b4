package scoring

import (
	"time"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
)

// Config holds configurable scoring constants.
type Config struct {
	// DifficultyWeights multiplies a question's points. Missing entries count as 1.
	DifficultyWeights map[question.Difficulty]int
}

// DefaultConfig scores every question at its authored point value.
func DefaultConfig() Config {
	return Config{
		DifficultyWeights: map[question.Difficulty]int{
			question.DifficultyBeginner:     1,
			question.DifficultyIntermediate: 1,
			question.DifficultyAdvanced:     1,
			question.DifficultyExpert:       1,
		},
	}
}

// TieredConfig weights harder questions more heavily.
func TieredConfig() Config {
	return Config{
		DifficultyWeights: map[question.Difficulty]int{
			question.DifficultyBeginner:     1,
			question.DifficultyIntermediate: 2,
			question.DifficultyAdvanced:     3,
			question.DifficultyExpert:       4,
		},
	}
}

// Engine turns answered questions into points.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Points returns what q is worth.
func (e *Engine) Points(q question.Question) int {
	w, ok := e.config.DifficultyWeights[q.Difficulty]
	if !ok || w <= 0 {
		w = 1
	}
	return q.Points * w
}

// Tally is a running correct/possible counter for one slice of a session.
type Tally struct {
	Attempted      int `json:"attempted"`
	Correct        int `json:"correct"`
	PointsEarned   int `json:"points_earned"`
	PointsPossible int `json:"points_possible"`
}

func (t *Tally) add(correct bool, points int) {
	t.Attempted++
	t.PointsPossible += points
	if correct {
		t.Correct++
		t.PointsEarned += points
	}
}

// Percentage is earned over possible points, 0 when nothing is possible.
func (t Tally) Percentage() float64 {
	return Percent(t.PointsEarned, t.PointsPossible)
}

// Percent computes 100*part/whole clamped to [0, 100], with whole <= 0 giving 0.
func Percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	p := float64(part) / float64(whole) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Group is a named tally (a category or a difficulty).
type Group struct {
	Name string `json:"name"`
	Tally
}

// Aggregator accumulates tallies as questions are scored. The zero value is ready to use.
type Aggregator struct {
	Overall      Tally   `json:"overall"`
	Categories   []Group `json:"categories"`
	Difficulties []Group `json:"difficulties"`
}

// Record adds one scored answer to the overall, category and difficulty tallies.
func (a *Aggregator) Record(q question.Question, correct bool, points int) {
	a.Overall.add(correct, points)
	a.Categories = addTo(a.Categories, q.Category, correct, points)
	a.Difficulties = addTo(a.Difficulties, string(q.Difficulty), correct, points)
}

func addTo(groups []Group, name string, correct bool, points int) []Group {
	for i := range groups {
		if groups[i].Name == name {
			groups[i].add(correct, points)
			return groups
		}
	}
	g := Group{Name: name}
	g.add(correct, points)
	return append(groups, g)
}

// Summary is the read-only view of a finished session.
type Summary struct {
	Questions      int           `json:"questions"`
	Correct        int           `json:"correct"`
	PointsEarned   int           `json:"points_earned"`
	PointsPossible int           `json:"points_possible"`
	Elapsed        time.Duration `json:"elapsed"`
	Categories     []Group       `json:"categories"`
	Difficulties   []Group       `json:"difficulties"`
}

// Summarize copies the tallies into a Summary. Difficulties come back in scale order.
func (a *Aggregator) Summarize(elapsed time.Duration) Summary {
	return Summary{
		Questions:      a.Overall.Attempted,
		Correct:        a.Overall.Correct,
		PointsEarned:   a.Overall.PointsEarned,
		PointsPossible: a.Overall.PointsPossible,
		Elapsed:        elapsed,
		Categories:     append([]Group(nil), a.Categories...),
		Difficulties:   byScale(a.Difficulties),
	}
}

func byScale(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, d := range question.Difficulties {
		for _, g := range groups {
			if g.Name == string(d) {
				out = append(out, g)
			}
		}
	}
	return out
}

// Percentage is the overall score, 0 when nothing was possible.
func (s Summary) Percentage() float64 {
	return Percent(s.PointsEarned, s.PointsPossible)
}

// AverageTime is the mean time spent per question.
func (s Summary) AverageTime() time.Duration {
	if s.Questions == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Questions)
}

// ConfigFor maps a weighting name ("flat" or "tiered") to its config. Unknown
// names fall back to flat.
func ConfigFor(weighting string) Config {
	if weighting == "tiered" {
		return TieredConfig()
	}
	return DefaultConfig()
}
