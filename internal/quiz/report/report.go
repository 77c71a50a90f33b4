package report

import (
	"fmt"
	"time"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/scoring"
)

const (
	// WeakCategoryBelow flags a category for review.
	WeakCategoryBelow = 70.0
	// WeakDifficultyBelow flags a difficulty for review.
	WeakDifficultyBelow = 60.0
)

// DefaultAdvice is used for banks that do not define their own brackets.
var DefaultAdvice = []question.Advice{
	{Below: 60, Lines: []string{
		"🔄 Go back over the fundamentals of this topic",
		"📖 Re-run the basic examples before attempting the quiz again",
	}},
	{Below: 75, Lines: []string{
		"📚 Focus on intermediate concepts and practical use",
		"💻 Build a small project that exercises what you missed",
	}},
	{Below: 85, Lines: []string{
		"🚀 Study the advanced patterns in this topic",
		"🏭 Look at how these features behave in production",
	}},
	{Below: 95, Lines: []string{
		"🎯 Polish the remaining expert-level gaps",
	}},
	{Below: 101, Lines: []string{
		"🎉 Outstanding mastery. Help others learn this topic",
	}},
}

// Inputs is everything Build needs.
type Inputs struct {
	Bank      string
	Title     string
	Summary   scoring.Summary
	Ladder    Ladder
	Advice    []question.Advice
	Resources map[string]string
}

// Breakdown is one row of the category or difficulty table.
type Breakdown struct {
	Name       string  `json:"name"`
	Correct    int     `json:"correct"`
	Attempted  int     `json:"attempted"`
	Earned     int     `json:"points_earned"`
	Possible   int     `json:"points_possible"`
	Percentage float64 `json:"percentage"`
}

// Result is the immutable end-of-session report.
type Result struct {
	Bank            string        `json:"bank"`
	Title           string        `json:"title"`
	Questions       int           `json:"questions"`
	Correct         int           `json:"correct"`
	PointsEarned    int           `json:"points_earned"`
	PointsPossible  int           `json:"points_possible"`
	Percentage      float64       `json:"percentage"`
	Elapsed         time.Duration `json:"elapsed"`
	AverageTime     time.Duration `json:"average_time"`
	Mastery         Rung          `json:"mastery"`
	Categories      []Breakdown   `json:"categories"`
	Difficulties    []Breakdown   `json:"difficulties"`
	Recommendations []string      `json:"recommendations"`
}

// Build turns a summary into a report. It has no side effects.
func Build(in Inputs) Result {
	sum := in.Summary
	pct := sum.Percentage()
	res := Result{
		Bank:           in.Bank,
		Title:          in.Title,
		Questions:      sum.Questions,
		Correct:        sum.Correct,
		PointsEarned:   sum.PointsEarned,
		PointsPossible: sum.PointsPossible,
		Percentage:     pct,
		Elapsed:        sum.Elapsed,
		AverageTime:    sum.AverageTime(),
		Mastery:        in.Ladder.Rung(pct),
		Categories:     breakdowns(sum.Categories),
		Difficulties:   breakdowns(sum.Difficulties),
	}
	res.Recommendations = recommend(in, res)
	return res
}

func breakdowns(groups []scoring.Group) []Breakdown {
	out := make([]Breakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, Breakdown{
			Name:       g.Name,
			Correct:    g.Correct,
			Attempted:  g.Attempted,
			Earned:     g.PointsEarned,
			Possible:   g.PointsPossible,
			Percentage: g.Percentage(),
		})
	}
	return out
}

func recommend(in Inputs, res Result) []string {
	recs := make([]string, 0, 4)

	advice := in.Advice
	if len(advice) == 0 {
		advice = DefaultAdvice
	}
	recs = append(recs, bracket(advice, res.Percentage)...)

	for _, c := range res.Categories {
		if c.Percentage >= WeakCategoryBelow {
			continue
		}
		line := fmt.Sprintf("🎯 Review %s (%.0f%%)", c.Name, c.Percentage)
		if file, ok := in.Resources[c.Name]; ok && file != "" {
			line += fmt.Sprintf(": study %s", file)
		}
		recs = append(recs, line)
	}

	for _, d := range res.Difficulties {
		if d.Percentage < WeakDifficultyBelow {
			recs = append(recs, fmt.Sprintf("📖 Review %s level concepts thoroughly", d.Name))
		}
	}
	return recs
}

// bracket picks the lines of the lowest bracket whose upper bound exceeds pct.
func bracket(advice []question.Advice, pct float64) []string {
	var chosen *question.Advice
	for i := range advice {
		a := &advice[i]
		if pct < a.Below && (chosen == nil || a.Below < chosen.Below) {
			chosen = a
		}
	}
	if chosen == nil {
		return nil
	}
	return append([]string(nil), chosen.Lines...)
}

// ForBank builds a report using the bank's ladder, advice and resources.
func ForBank(b *question.Bank, sum scoring.Summary) (Result, error) {
	ladder, err := LookupLadder(b.Ladder)
	if err != nil {
		return Result{}, fmt.Errorf("bank %s: %w", b.Name, err)
	}
	return Build(Inputs{
		Bank:      b.Name,
		Title:     b.Title,
		Summary:   sum,
		Ladder:    ladder,
		Advice:    b.Advice,
		Resources: b.Resources,
	}), nil
}
