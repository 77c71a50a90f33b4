package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/report"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/scoring"
	"github.com/gokatarajesh/sdk-quiz/internal/results"
)

// historyLimit is how many past runs the history screen lists.
const historyLimit = 10

// Mode is one entry of the per-bank menu.
type Mode int

const (
	ModeFull Mode = iota + 1
	ModeQuick
	ModeCategory
	ModeDifficulty
	ModeHistory
	ModeExit
)

var modeLabels = []struct {
	mode  Mode
	label string
}{
	{ModeFull, "Full quiz"},
	{ModeQuick, "Quick assessment"},
	{ModeCategory, "Category focus"},
	{ModeDifficulty, "Difficulty focus"},
	{ModeHistory, "Past results"},
	{ModeExit, "Exit"},
}

// Options wires the terminal quiz.
type Options struct {
	Catalog  *question.Catalog
	Selector *quiz.Selector
	Engine   *scoring.Engine
	// History is optional; nil disables saving and the history screen.
	History results.Store
	Player  string
	Now     func() time.Time
	Logger  zerolog.Logger
}

// App is the interactive terminal front end.
type App struct {
	opts   Options
	runner *quiz.Runner
	logger zerolog.Logger
}

// New builds the terminal app.
func New(opts Options) *App {
	if opts.Selector == nil {
		opts.Selector = quiz.NewSelector()
	}
	if opts.Engine == nil {
		opts.Engine = scoring.NewEngine(scoring.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if strings.TrimSpace(opts.Player) == "" {
		opts.Player = "local"
	}
	logger := opts.Logger.With().Str("component", "cli").Logger()
	return &App{opts: opts, runner: quiz.NewRunner(opts.Logger), logger: logger}
}

// Run shows the menu for bankName, or asks for a bank first when it is empty.
// It returns nil when the player exits or input ends.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer, bankName string) error {
	p := quiz.NewLinePrompter(in, out)

	var (
		bank *question.Bank
		err  error
	)
	if bankName != "" {
		bank, err = a.opts.Catalog.Bank(bankName)
		if err != nil {
			return err
		}
	} else {
		bank, err = a.chooseBank(ctx, p, out)
		if err != nil {
			return quiet(err)
		}
	}

	for {
		mode, err := a.chooseMode(ctx, p, out, bank)
		if err != nil {
			return quiet(err)
		}
		switch mode {
		case ModeExit:
			fmt.Fprintln(out, "👋 Goodbye!")
			return nil
		case ModeHistory:
			if err := a.showHistory(ctx, out); err != nil {
				return err
			}
		default:
			filter, err := a.filterFor(ctx, p, out, bank, mode)
			if err != nil {
				return quiet(err)
			}
			if err := a.play(ctx, p, out, bank, filter); err != nil {
				return quiet(err)
			}
		}
	}
}

func (a *App) chooseBank(ctx context.Context, p quiz.Prompter, out io.Writer) (*question.Bank, error) {
	banks := a.opts.Catalog.Banks()
	fmt.Fprintln(out, "\n📚 Choose a topic:")
	for i, b := range banks {
		fmt.Fprintf(out, "  %d. %s (%d questions)\n", i+1, b.Title, len(b.Questions))
	}
	n, err := choose(ctx, p, out, len(banks))
	if err != nil {
		return nil, err
	}
	return banks[n-1], nil
}

func (a *App) chooseMode(ctx context.Context, p quiz.Prompter, out io.Writer, bank *question.Bank) (Mode, error) {
	fmt.Fprintf(out, "\n🎯 %s\n", bank.Title)
	for _, m := range modeLabels {
		label := m.label
		switch m.mode {
		case ModeFull:
			label = fmt.Sprintf("%s (%d questions)", label, len(bank.Questions))
		case ModeQuick:
			label = fmt.Sprintf("%s (%d random questions)", label, bank.QuickCount)
		}
		fmt.Fprintf(out, "  %d. %s\n", m.mode, label)
	}
	n, err := choose(ctx, p, out, len(modeLabels))
	if err != nil {
		return 0, err
	}
	return modeLabels[n-1].mode, nil
}

func (a *App) filterFor(ctx context.Context, p quiz.Prompter, out io.Writer, bank *question.Bank, mode Mode) (quiz.Filter, error) {
	switch mode {
	case ModeQuick:
		return quiz.Filter{Count: bank.QuickCount, Randomize: true}, nil
	case ModeCategory:
		cats := bank.Categories()
		fmt.Fprintln(out, "\n📂 Categories:")
		for i, c := range cats {
			fmt.Fprintf(out, "  %d. %s\n", i+1, c)
		}
		n, err := choose(ctx, p, out, len(cats))
		if err != nil {
			return quiz.Filter{}, err
		}
		return quiz.Filter{Category: cats[n-1]}, nil
	case ModeDifficulty:
		counts := bank.CountByDifficulty()
		var levels []question.Difficulty
		for _, d := range question.Difficulties {
			if counts[d] > 0 {
				levels = append(levels, d)
			}
		}
		fmt.Fprintln(out, "\n📈 Difficulty levels:")
		for i, d := range levels {
			fmt.Fprintf(out, "  %d. %s (%d questions)\n", i+1, d, counts[d])
		}
		n, err := choose(ctx, p, out, len(levels))
		if err != nil {
			return quiz.Filter{}, err
		}
		return quiz.Filter{Difficulty: levels[n-1]}, nil
	default:
		return quiz.Filter{}, nil
	}
}

func (a *App) play(ctx context.Context, p quiz.Prompter, out io.Writer, bank *question.Bank, filter quiz.Filter) error {
	qs, err := a.opts.Selector.Select(bank.LoadAll(), filter)
	if errors.Is(err, quiz.ErrNoMatchingQuestions) {
		fmt.Fprintln(out, "❌ No questions match that selection.")
		return nil
	}
	if err != nil {
		return err
	}

	sess, err := quiz.NewSession(qs, quiz.Options{Style: bank.Style, Engine: a.opts.Engine, Now: a.opts.Now})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n🚀 Starting %s: %d questions\n", bank.Title, sess.Total())

	sum, err := a.runner.Run(ctx, sess, quiz.NewTextView(out), p)
	if errors.Is(err, quiz.ErrInterrupted) {
		fmt.Fprintln(out, "\n⏹️  Quiz interrupted. No results recorded.")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return io.EOF
	}
	if err != nil {
		return err
	}

	res, err := report.ForBank(bank, sum)
	if err != nil {
		return err
	}
	if err := report.Render(out, res); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	a.save(ctx, res)
	return nil
}

// save stores the run in the history store. Failures are logged, the report was already shown.
func (a *App) save(ctx context.Context, res report.Result) {
	if a.opts.History == nil {
		return
	}
	rec := results.FromReport(uuid.New(), a.opts.Player, res, a.opts.Now())
	if err := a.opts.History.Save(ctx, rec); err != nil {
		a.logger.Warn().Err(err).Str("bank", res.Bank).Msg("failed to save quiz result")
		return
	}
	a.logger.Debug().Str("result_id", rec.ID.String()).Msg("quiz result saved")
}

func (a *App) showHistory(ctx context.Context, out io.Writer) error {
	if a.opts.History == nil {
		fmt.Fprintln(out, "\nℹ️  History is off. Set QUIZ_HISTORY_PATH to keep past results.")
		return nil
	}
	recs, err := a.opts.History.Recent(ctx, a.opts.Player, historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	fmt.Fprintf(out, "\n🗂️  Recent results for %s:\n", a.opts.Player)
	if len(recs) == 0 {
		fmt.Fprintln(out, "  No results yet.")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintf(out, "  %s  %-14s %d/%d  %.1f%%  %s\n",
			r.CompletedAt.Local().Format("2006-01-02 15:04"), r.Bank, r.Correct, r.Questions, r.Percentage, r.Mastery)
	}
	return nil
}

// choose reads a 1-based menu choice, re-prompting until it is in range.
func choose(ctx context.Context, p quiz.Prompter, out io.Writer, n int) (int, error) {
	prompt := fmt.Sprintf("Select (1-%d): ", n)
	for {
		raw, err := p.ReadLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err == nil && v >= 1 && v <= n {
			return v, nil
		}
		fmt.Fprintf(out, "❌ Invalid choice. Please enter a number between 1 and %d.\n", n)
	}
}

// quiet treats end of input as a normal exit.
func quiet(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
