package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/scoring"
)

func TestLadderPicksHighestMetThreshold(t *testing.T) {
	expert := MustLadder("expert")
	cases := map[float64]string{
		100:   "Expert Master",
		95:    "Expert Master",
		94.99: "Expert Level",
		90:    "Expert Level",
		85:    "Advanced+",
		80:    "Advanced",
		75:    "Intermediate+",
		70:    "Intermediate",
		66.7:  "Developing",
		60:    "Developing",
		59.9:  "Needs Study",
		0:     "Needs Study",
	}
	for pct, want := range cases {
		assert.Equal(t, want, expert.Label(pct), "%.2f", pct)
	}

	runner := MustLadder("runner")
	assert.Equal(t, "Beginner", runner.Label(40))
	assert.Equal(t, "Needs Significant Study", runner.Label(39))

	assert.Equal(t, "Fair", MustLadder("standard").Label(66.7))
}

func TestLadderSortsUnorderedRungs(t *testing.T) {
	l := NewLadder("x", Rung{Label: "low"}, Rung{Min: 50, Label: "mid"}, Rung{Min: 90, Label: "top"})
	assert.Equal(t, "top", l.Label(95))
	assert.Equal(t, "mid", l.Label(60))
	assert.Equal(t, "low", l.Label(10))
}

func TestLookupLadderUnknown(t *testing.T) {
	_, err := LookupLadder("bogus")
	assert.Error(t, err)
}

func summaryOf(records ...record) scoring.Summary {
	var agg scoring.Aggregator
	for _, r := range records {
		agg.Record(question.Question{Category: r.cat, Difficulty: r.diff, Points: r.pts}, r.ok, r.pts)
	}
	return agg.Summarize(time.Minute)
}

type record struct {
	cat  string
	diff question.Difficulty
	pts  int
	ok   bool
}

func TestBuildRecommendations(t *testing.T) {
	sum := summaryOf(
		record{"Tools", question.DifficultyBeginner, 1, true},
		record{"Tools", question.DifficultyBeginner, 1, true},
		record{"Tracing", question.DifficultyExpert, 1, false},
		record{"Tracing", question.DifficultyExpert, 1, false},
		record{"Tracing", question.DifficultyBeginner, 1, true},
	)
	res := Build(Inputs{
		Bank:      "tracing",
		Summary:   sum,
		Ladder:    MustLadder("standard"),
		Resources: map[string]string{"Tracing": "12_tracing/01_basic_tracing.py"},
	})

	assert.InDelta(t, 60.0, res.Percentage, 0.001)
	assert.Equal(t, "Fair", res.Mastery.Label)
	assert.Equal(t, 12*time.Second, res.AverageTime)
	require.Len(t, res.Recommendations, 4)
	assert.Equal(t, DefaultAdvice[1].Lines, res.Recommendations[:2])
	assert.Equal(t, "🎯 Review Tracing (33%): study 12_tracing/01_basic_tracing.py", res.Recommendations[2])
	assert.Equal(t, "📖 Review Expert level concepts thoroughly", res.Recommendations[3])
}

func TestBuildZeroPossible(t *testing.T) {
	res := Build(Inputs{Ladder: MustLadder("tiered")})
	assert.Equal(t, 0.0, res.Percentage)
	assert.Equal(t, "Needs Study", res.Mastery.Label)
	assert.Equal(t, DefaultAdvice[0].Lines, res.Recommendations)
}

func TestBuildPerfectScoreUsesTopBracket(t *testing.T) {
	sum := summaryOf(record{"A", question.DifficultyAdvanced, 3, true})
	res := Build(Inputs{Summary: sum, Ladder: MustLadder("expert")})
	assert.Equal(t, 100.0, res.Percentage)
	assert.Equal(t, DefaultAdvice[4].Lines, res.Recommendations)
}

func TestBuildCustomAdvice(t *testing.T) {
	sum := summaryOf(record{"A", question.DifficultyAdvanced, 1, true}, record{"A", question.DifficultyAdvanced, 1, false})
	res := Build(Inputs{
		Summary: sum,
		Ladder:  MustLadder("standard"),
		Advice: []question.Advice{
			{Below: 101, Lines: []string{"top"}},
			{Below: 60, Lines: []string{"bottom"}},
		},
	})
	assert.Equal(t, []string{"bottom"}, res.Recommendations[:1])
}

func TestRenderIsIdempotent(t *testing.T) {
	sum := summaryOf(
		record{"Tools", question.DifficultyBeginner, 1, true},
		record{"Hooks", question.DifficultyIntermediate, 2, false},
	)
	in := Inputs{Title: "Demo", Summary: sum, Ladder: MustLadder("expert")}

	var a, b bytes.Buffer
	require.NoError(t, Render(&a, Build(in)))
	require.NoError(t, Render(&b, Build(in)))
	assert.Equal(t, a.String(), b.String())

	out := a.String()
	assert.Contains(t, out, "QUIZ RESULTS: Demo")
	assert.Contains(t, out, "Score: 1/3 points (33.3%)")
	assert.Contains(t, out, "✅ Tools: 1/1 (100%)")
	assert.Contains(t, out, "❌ Hooks: 0/1 (0%)")
	assert.Contains(t, out, "NEEDS STUDY")
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, "✅", StatusIcon(80))
	assert.Equal(t, "⚠️", StatusIcon(79.9))
	assert.Equal(t, "⚠️", StatusIcon(60))
	assert.Equal(t, "❌", StatusIcon(59))
}

func TestForBankEveryEmbeddedLadderExists(t *testing.T) {
	catalog, err := question.Default()
	require.NoError(t, err)
	for _, bank := range catalog.Banks() {
		_, err := ForBank(bank, scoring.Summary{})
		assert.NoError(t, err, bank.Name)
	}

	_, err = ForBank(&question.Bank{Name: "x", Ladder: "nope"}, scoring.Summary{})
	assert.Error(t, err)
}

func TestEveryBankLadderNameIsBuiltIn(t *testing.T) {
	for _, name := range question.Ladders {
		_, err := LookupLadder(name)
		assert.NoError(t, err, name)
	}
	assert.Len(t, ladders, len(question.Ladders))
}
