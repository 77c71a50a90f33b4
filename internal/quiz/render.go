package quiz

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
)

// TextView renders the loop as plain text for a terminal.
type TextView struct {
	w io.Writer
}

// NewTextView writes to w.
func NewTextView(w io.Writer) *TextView {
	return &TextView{w: w}
}

func (v *TextView) ShowQuestion(_ context.Context, n, total int, q question.Question, style question.AnswerStyle) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", strings.Repeat("─", 60))
	fmt.Fprintf(&b, "❓ Question %d/%d  [%s] (%s", n, total, q.Category, q.Difficulty)
	if q.Points > 1 {
		fmt.Fprintf(&b, ", %d points", q.Points)
	}
	b.WriteString(")\n\n")
	b.WriteString(q.Prompt)
	b.WriteString("\n")
	if q.CodeExample != "" {
		b.WriteString("\n💻 Code:\n")
		for _, line := range strings.Split(strings.TrimRight(q.CodeExample, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	b.WriteString("\n")
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "  %s) %s\n", style.Key(i), opt)
	}
	_, err := io.WriteString(v.w, b.String())
	return err
}

func (v *TextView) ShowInvalid(_ context.Context, raw string, keys []string) error {
	_, err := fmt.Fprintf(v.w, "❌ %q is not a valid choice. Please enter one of: %s\n", strings.TrimSpace(raw), strings.Join(keys, ", "))
	return err
}

func (v *TextView) ShowFeedback(_ context.Context, a AnsweredQuestion) error {
	var b strings.Builder
	if a.Correct {
		fmt.Fprintf(&b, "✅ Correct! (+%d)\n", a.Points)
	} else {
		fmt.Fprintf(&b, "❌ Incorrect. The answer was %s) %s\n", keyFor(a), a.Question.CorrectOption())
	}
	if a.Question.Explanation != "" {
		fmt.Fprintf(&b, "💡 %s\n", a.Question.Explanation)
	}
	if a.Question.Insight != "" {
		fmt.Fprintf(&b, "🧠 Insight: %s\n", a.Question.Insight)
	}
	_, err := io.WriteString(v.w, b.String())
	return err
}

// keyFor recovers the style from the recorded key so feedback uses the same keys as the prompt.
func keyFor(a AnsweredQuestion) string {
	style := question.StyleLetter
	if a.Key != "" && a.Key[0] >= '0' && a.Key[0] <= '9' {
		style = question.StyleNumber
	}
	return style.Key(a.Question.Answer)
}
