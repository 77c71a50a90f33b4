package quiz

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/scoring"
)

// Prompter supplies one line of player input per call.
type Prompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// View renders the interactive loop.
type View interface {
	ShowQuestion(ctx context.Context, n, total int, q question.Question, style question.AnswerStyle) error
	ShowInvalid(ctx context.Context, raw string, keys []string) error
	ShowFeedback(ctx context.Context, a AnsweredQuestion) error
}

// Runner drives a session question by question.
type Runner struct {
	logger zerolog.Logger
}

// NewRunner builds a runner.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger.With().Str("component", "quiz_runner").Logger()}
}

// Run presents every remaining question, re-prompting on invalid keys for as
// long as it takes. Cancelling ctx or closing the input yields ErrInterrupted
// and no summary.
func (r *Runner) Run(ctx context.Context, s *Session, view View, in Prompter) (scoring.Summary, error) {
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return scoring.Summary{}, ErrInterrupted
		}

		q, err := s.Present()
		if err != nil {
			return scoring.Summary{}, err
		}
		if err := view.ShowQuestion(ctx, s.Position()+1, s.Total(), q, s.Style()); err != nil {
			return scoring.Summary{}, fmt.Errorf("render question: %w", err)
		}

		keys := s.Style().Keys(len(q.Options))
		prompt := fmt.Sprintf("Your answer (%s-%s): ", keys[0], keys[len(keys)-1])
		for {
			raw, err := in.ReadLine(ctx, prompt)
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrInterrupted) {
					r.logger.Debug().Int("answered", s.Position()).Msg("quiz interrupted, discarding session")
					return scoring.Summary{}, ErrInterrupted
				}
				return scoring.Summary{}, fmt.Errorf("read answer: %w", err)
			}

			out, err := s.Submit(raw)
			if errors.Is(err, ErrInvalidSelection) {
				if err := view.ShowInvalid(ctx, raw, keys); err != nil {
					return scoring.Summary{}, fmt.Errorf("render invalid: %w", err)
				}
				continue
			}
			if err != nil {
				return scoring.Summary{}, err
			}
			if err := view.ShowFeedback(ctx, out.Answered); err != nil {
				return scoring.Summary{}, fmt.Errorf("render feedback: %w", err)
			}
			break
		}
	}
	return s.Summary(), nil
}

// LinePrompter reads newline-terminated answers from a reader. Reads happen
// on a background goroutine so a blocked read does not hold up cancellation.
type LinePrompter struct {
	out   io.Writer
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

// NewLinePrompter starts reading lines from in and writes prompts to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	p := &LinePrompter{out: out, lines: make(chan lineResult)}
	go p.readLoop(in)
	return p
}

func (p *LinePrompter) readLoop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		p.lines <- lineResult{text: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		p.lines <- lineResult{err: err}
	}
}

// ReadLine prints prompt and waits for the next line or ctx.
func (p *LinePrompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	if prompt != "" {
		if _, err := io.WriteString(p.out, prompt); err != nil {
			return "", err
		}
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-p.lines:
		return res.text, res.err
	}
}
