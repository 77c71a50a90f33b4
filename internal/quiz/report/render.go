package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// StatusIcon marks a breakdown row.
func StatusIcon(pct float64) string {
	switch {
	case pct >= 80:
		return "✅"
	case pct >= 60:
		return "⚠️"
	default:
		return "❌"
	}
}

// Render writes the formatted report. Output depends only on r.
func Render(w io.Writer, r Result) error {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "\n%s\n", rule)
	if r.Title != "" {
		fmt.Fprintf(&b, "📊 QUIZ RESULTS: %s\n", r.Title)
	} else {
		b.WriteString("📊 QUIZ RESULTS\n")
	}
	fmt.Fprintf(&b, "%s\n", rule)

	fmt.Fprintf(&b, "🎯 Score: %d/%d points (%.1f%%)\n", r.PointsEarned, r.PointsPossible, r.Percentage)
	fmt.Fprintf(&b, "✔️  Correct answers: %d/%d\n", r.Correct, r.Questions)
	fmt.Fprintf(&b, "⏱️  Time taken: %s (avg %s per question)\n", roundDuration(r.Elapsed), roundDuration(r.AverageTime))
	fmt.Fprintf(&b, "\n%s Mastery level: %s\n", r.Mastery.Badge, strings.ToUpper(r.Mastery.Label))
	if r.Mastery.Message != "" {
		fmt.Fprintf(&b, "💬 %s\n", r.Mastery.Message)
	}

	writeTable(&b, "📈 Performance by category:", r.Categories)
	writeTable(&b, "📊 Performance by difficulty:", r.Difficulties)

	if len(r.Recommendations) > 0 {
		b.WriteString("\n💡 Recommendations:\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&b, "   %d. %s\n", i+1, rec)
		}
	}
	fmt.Fprintf(&b, "%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTable(b *strings.Builder, heading string, rows []Breakdown) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", heading)
	for _, row := range rows {
		fmt.Fprintf(b, "   %s %s: %d/%d (%.0f%%)\n", StatusIcon(row.Percentage), row.Name, row.Correct, row.Attempted, row.Percentage)
	}
}

func roundDuration(d time.Duration) time.Duration {
	return d.Round(100 * time.Millisecond)
}
