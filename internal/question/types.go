package question

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Difficulty is the fixed difficulty scale shared by every bank.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
	DifficultyExpert       Difficulty = "Expert"
)

// Difficulties lists the scale from easiest to hardest.
var Difficulties = []Difficulty{
	DifficultyBeginner,
	DifficultyIntermediate,
	DifficultyAdvanced,
	DifficultyExpert,
}

// ParseDifficulty matches s against the scale, ignoring case and surrounding space.
func ParseDifficulty(s string) (Difficulty, error) {
	trimmed := strings.TrimSpace(s)
	for _, d := range Difficulties {
		if strings.EqualFold(trimmed, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// UnmarshalText lets YAML and JSON decoders accept any casing.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AnswerStyle decides which keys a player types to pick an option.
type AnswerStyle string

const (
	StyleLetter AnswerStyle = "letter" // a, b, c, ...
	StyleNumber AnswerStyle = "number" // 1, 2, 3, ...
)

// Key returns the input key for option i.
func (s AnswerStyle) Key(i int) string {
	if s == StyleNumber {
		return strconv.Itoa(i + 1)
	}
	return string(rune('a' + i))
}

// Keys lists the valid keys for a question with n options.
func (s AnswerStyle) Keys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = s.Key(i)
	}
	return keys
}

// Parse maps raw input onto an option index. ok is false when the input is
// not one of the n valid keys.
func (s AnswerStyle) Parse(raw string, n int) (int, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return 0, false
	}
	for i, key := range s.Keys(n) {
		if token == key {
			return i, true
		}
	}
	return 0, false
}

// Question is one static multiple-choice item.
type Question struct {
	ID          int        `yaml:"id" json:"id"`
	Category    string     `yaml:"category" json:"category"`
	Difficulty  Difficulty `yaml:"difficulty" json:"difficulty"`
	Prompt      string     `yaml:"prompt" json:"prompt"`
	Options     []string   `yaml:"options" json:"options"`
	Answer      int        `yaml:"answer" json:"answer"`
	Explanation string     `yaml:"explanation" json:"explanation"`
	Points      int        `yaml:"points" json:"points"`

	// Display only.
	CodeExample string `yaml:"code,omitempty" json:"code,omitempty"`
	Insight     string `yaml:"insight,omitempty" json:"insight,omitempty"`
}

// IsCorrect reports whether choice is the correct option index.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.Answer
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	return q.Options[q.Answer]
}

// Validate checks the authoring invariants of a single question.
func (q Question) Validate() error {
	switch {
	case strings.TrimSpace(q.Prompt) == "":
		return fmt.Errorf("question %d: empty prompt", q.ID)
	case strings.TrimSpace(q.Category) == "":
		return fmt.Errorf("question %d: empty category", q.ID)
	case q.Difficulty == "":
		return fmt.Errorf("question %d: missing difficulty", q.ID)
	case len(q.Options) < 2:
		return fmt.Errorf("question %d: needs at least two options, got %d", q.ID, len(q.Options))
	case q.Answer < 0 || q.Answer >= len(q.Options):
		return fmt.Errorf("question %d: answer index %d outside %d options", q.ID, q.Answer, len(q.Options))
	case q.Points <= 0:
		return fmt.Errorf("question %d: points must be positive, got %d", q.ID, q.Points)
	}
	return nil
}

// Advice is an overall-score bracket: Lines apply when the percentage is below Below.
type Advice struct {
	Below float64  `yaml:"below" json:"below"`
	Lines []string `yaml:"lines" json:"lines"`
}

// Ladders names the mastery ladders a bank may pick. The report package
// defines one ladder per name.
var Ladders = []string{"expert", "standard", "runner"}

// Bank is a named, ordered question store for one topic.
type Bank struct {
	Name       string            `yaml:"name" json:"name"`
	Title      string            `yaml:"title" json:"title"`
	Style      AnswerStyle       `yaml:"style" json:"style"`
	Ladder     string            `yaml:"ladder" json:"ladder"`
	QuickCount int               `yaml:"quick_count" json:"quick_count"`
	Advice     []Advice          `yaml:"advice" json:"-"`
	Resources  map[string]string `yaml:"resources" json:"-"`
	Questions  []Question        `yaml:"questions" json:"-"`
}

// LoadAll returns a copy of the bank's questions in stored order.
func (b *Bank) LoadAll() []Question {
	out := make([]Question, len(b.Questions))
	copy(out, b.Questions)
	return out
}

// Categories returns each category once, in first-seen order.
func (b *Bank) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, q := range b.Questions {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}
	return out
}

// CountByDifficulty returns how many questions sit at each difficulty.
func (b *Bank) CountByDifficulty() map[Difficulty]int {
	counts := make(map[Difficulty]int, len(Difficulties))
	for _, q := range b.Questions {
		counts[q.Difficulty]++
	}
	return counts
}

func (b *Bank) normalize() {
	if b.Style == "" {
		b.Style = StyleLetter
	}
	if b.Ladder == "" {
		b.Ladder = "standard"
	}
	if b.QuickCount <= 0 || b.QuickCount > len(b.Questions) {
		b.QuickCount = min(10, len(b.Questions))
	}
	for i := range b.Questions {
		if b.Questions[i].Points == 0 {
			b.Questions[i].Points = 1
		}
	}
}

// Validate checks bank-level invariants and every question.
func (b *Bank) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("bank without name")
	}
	if b.Style != StyleLetter && b.Style != StyleNumber {
		return fmt.Errorf("bank %s: unknown answer style %q", b.Name, b.Style)
	}
	if !slices.Contains(Ladders, b.Ladder) {
		return fmt.Errorf("bank %s: unknown mastery ladder %q (want one of %v)", b.Name, b.Ladder, Ladders)
	}
	if len(b.Questions) == 0 {
		return fmt.Errorf("bank %s: no questions", b.Name)
	}
	ids := make(map[int]struct{}, len(b.Questions))
	for _, q := range b.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("bank %s: %w", b.Name, err)
		}
		if b.Style == StyleLetter && len(q.Options) > 26 {
			return fmt.Errorf("bank %s: question %d has too many options for letter keys", b.Name, q.ID)
		}
		if _, dup := ids[q.ID]; dup {
			return fmt.Errorf("bank %s: duplicate question id %d", b.Name, q.ID)
		}
		ids[q.ID] = struct{}{}
	}
	return nil
}
