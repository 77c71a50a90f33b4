package report

import (
	"fmt"
	"sort"
)

// Rung is one step of a mastery ladder.
type Rung struct {
	Min     float64 `json:"min"`
	Label   string  `json:"label"`
	Badge   string  `json:"badge"`
	Message string  `json:"message"`
}

// Ladder maps a percentage to a mastery label. Rungs are kept sorted highest first.
type Ladder struct {
	Name  string
	rungs []Rung
	floor Rung
}

// NewLadder sorts rungs by descending minimum. floor applies below every rung.
func NewLadder(name string, floor Rung, rungs ...Rung) Ladder {
	sorted := append([]Rung(nil), rungs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })
	return Ladder{Name: name, rungs: sorted, floor: floor}
}

// Rung returns the first rung, scanning from the top, whose minimum pct meets.
func (l Ladder) Rung(pct float64) Rung {
	for _, r := range l.rungs {
		if pct >= r.Min {
			return r
		}
	}
	return l.floor
}

// Label is shorthand for Rung(pct).Label.
func (l Ladder) Label(pct float64) string {
	return l.Rung(pct).Label
}

var ladders = map[string]Ladder{
	"expert": NewLadder("expert",
		Rung{Label: "Needs Study", Badge: "📚", Message: "Significant gaps. Work through the fundamentals again."},
		Rung{Min: 95, Label: "Expert Master", Badge: "🏆", Message: "Outstanding command of the material."},
		Rung{Min: 90, Label: "Expert Level", Badge: "🥇", Message: "Excellent understanding with very few gaps."},
		Rung{Min: 85, Label: "Advanced+", Badge: "🥈", Message: "Strong understanding of advanced topics."},
		Rung{Min: 80, Label: "Advanced", Badge: "🥉", Message: "Solid grasp of most advanced topics."},
		Rung{Min: 75, Label: "Intermediate+", Badge: "📘", Message: "Good fundamentals, keep pushing on advanced topics."},
		Rung{Min: 70, Label: "Intermediate", Badge: "📖", Message: "Good fundamentals with some gaps."},
		Rung{Min: 60, Label: "Developing", Badge: "🔄", Message: "The basics are there. Practice more."},
	),
	"standard": NewLadder("standard",
		Rung{Label: "Needs Study", Badge: "📚", Message: "Review the examples and documentation, then try again."},
		Rung{Min: 90, Label: "Excellent", Badge: "🏆", Message: "You have mastered this topic."},
		Rung{Min: 80, Label: "Great", Badge: "🥇", Message: "Strong understanding of this topic."},
		Rung{Min: 70, Label: "Good", Badge: "🥈", Message: "Review the areas where you missed questions."},
		Rung{Min: 60, Label: "Fair", Badge: "🥉", Message: "Consider reviewing the documentation and examples."},
	),
	"tiered": NewLadder("tiered",
		Rung{Label: "Needs Study", Badge: "📚", Message: "Significant gaps identified. Review the materials thoroughly."},
		Rung{Min: 95, Label: "Expert Level", Badge: "🏆", Message: "Mastery-level understanding."},
		Rung{Min: 85, Label: "Advanced", Badge: "🥇", Message: "Strong understanding with minor gaps."},
		Rung{Min: 75, Label: "Intermediate", Badge: "🥈", Message: "You know the basics. Study the advanced concepts."},
		Rung{Min: 60, Label: "Beginner+", Badge: "🥉", Message: "Fair understanding. Focus on fundamentals."},
	),
	"runner": NewLadder("runner",
		Rung{Label: "Needs Significant Study", Badge: "📚", Message: "Start again from the basic run methods."},
		Rung{Min: 90, Label: "Runner Master", Badge: "🏆", Message: "You know the execution model inside out."},
		Rung{Min: 75, Label: "Proficient", Badge: "🥇", Message: "Solid understanding of the agent loop."},
		Rung{Min: 60, Label: "Developing", Badge: "🥈", Message: "Review turn limits and run configuration."},
		Rung{Min: 40, Label: "Beginner", Badge: "🥉", Message: "Work through the runner examples again."},
	),
}

// LookupLadder returns a built-in ladder by name.
func LookupLadder(name string) (Ladder, error) {
	l, ok := ladders[name]
	if !ok {
		return Ladder{}, fmt.Errorf("unknown mastery ladder %q", name)
	}
	return l, nil
}

// MustLadder is LookupLadder for names known at compile time.
func MustLadder(name string) Ladder {
	l, err := LookupLadder(name)
	if err != nil {
		panic(err)
	}
	return l
}
