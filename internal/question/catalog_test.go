package question

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoadsEveryBank(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)

	banks := catalog.Banks()
	assert.Len(t, banks, 10)
	for _, bank := range banks {
		assert.NoError(t, bank.Validate(), bank.Name)
		assert.NotEmpty(t, bank.Title, bank.Name)
		assert.Positive(t, bank.QuickCount, bank.Name)
		assert.LessOrEqual(t, bank.QuickCount, len(bank.Questions), bank.Name)
	}
}

func TestCatalogBankUnknown(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)

	_, err = catalog.Bank("nope")
	assert.ErrorIs(t, err, ErrUnknownBank)

	bank, err := catalog.Bank("guardrails")
	require.NoError(t, err)
	assert.Equal(t, "guardrails", bank.Name)
}

func TestLoadCatalogAppliesDefaults(t *testing.T) {
	fsys := fstest.MapFS{
		"demo.yaml": {Data: []byte(`
title: Demo
questions:
  - id: 1
    category: basics
    difficulty: beginner
    prompt: pick b
    options: [a, b, c]
    answer: 1
    explanation: b it is
`)},
	}

	catalog, err := LoadCatalog(fsys)
	require.NoError(t, err)

	bank, err := catalog.Bank("demo")
	require.NoError(t, err)
	assert.Equal(t, StyleLetter, bank.Style)
	assert.Equal(t, "standard", bank.Ladder)
	assert.Equal(t, 1, bank.QuickCount)

	qs := bank.LoadAll()
	require.Len(t, qs, 1)
	assert.Equal(t, DifficultyBeginner, qs[0].Difficulty)
	assert.Equal(t, 1, qs[0].Points)
	assert.Equal(t, "b", qs[0].CorrectOption())
}

func TestLoadCatalogRejectsBrokenBanks(t *testing.T) {
	cases := map[string]string{
		"answer out of range": `
questions:
  - {id: 1, category: c, difficulty: Beginner, prompt: p, options: [a, b], answer: 2}
`,
		"negative points": `
questions:
  - {id: 1, category: c, difficulty: Beginner, prompt: p, options: [a, b], answer: 0, points: -1}
`,
		"unknown ladder": `
ladder: standrad
questions:
  - {id: 1, category: c, difficulty: Beginner, prompt: p, options: [a, b], answer: 0}
`,
		"duplicate id": `
questions:
  - {id: 1, category: c, difficulty: Beginner, prompt: p, options: [a, b], answer: 0}
  - {id: 1, category: c, difficulty: Beginner, prompt: q, options: [a, b], answer: 1}
`,
		"unknown difficulty": `
questions:
  - {id: 1, category: c, difficulty: Wizard, prompt: p, options: [a, b], answer: 0}
`,
		"unknown field": `
questions:
  - {id: 1, category: c, difficulty: Beginner, prompt: p, options: [a, b], answer: 0, colour: red}
`,
		"empty": `
title: nothing here
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog(fstest.MapFS{"bad.yaml": {Data: []byte(body)}})
			assert.Error(t, err)
		})
	}
}

func TestLoadAllReturnsCopy(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)
	bank, err := catalog.Bank("agents")
	require.NoError(t, err)

	qs := bank.LoadAll()
	qs[0].Prompt = "changed"
	assert.NotEqual(t, "changed", bank.LoadAll()[0].Prompt)
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	bank := &Bank{Questions: []Question{
		{Category: "b"}, {Category: "a"}, {Category: "b"}, {Category: "c"},
	}}
	assert.Equal(t, []string{"b", "a", "c"}, bank.Categories())
}

func TestAnswerStyleParse(t *testing.T) {
	idx, ok := StyleLetter.Parse(" C ", 4)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = StyleLetter.Parse("e", 4)
	assert.False(t, ok)
	_, ok = StyleLetter.Parse("1", 4)
	assert.False(t, ok)
	_, ok = StyleLetter.Parse("ab", 4)
	assert.False(t, ok)

	idx, ok = StyleNumber.Parse("4", 4)
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = StyleNumber.Parse("0", 4)
	assert.False(t, ok)
	_, ok = StyleNumber.Parse("b", 4)
	assert.False(t, ok)
	_, ok = StyleNumber.Parse("", 4)
	assert.False(t, ok)

	for _, raw := range []string{"01", "+1", "1.0", " 0x1"} {
		_, ok = StyleNumber.Parse(raw, 4)
		assert.False(t, ok, raw)
	}

	assert.Equal(t, []string{"a", "b", "c"}, StyleLetter.Keys(3))
	assert.Equal(t, []string{"1", "2"}, StyleNumber.Keys(2))
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("  EXPERT ")
	require.NoError(t, err)
	assert.Equal(t, DifficultyExpert, d)

	_, err = ParseDifficulty("hard")
	assert.Error(t, err)
}
