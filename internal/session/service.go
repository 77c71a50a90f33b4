package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/leaderboard"
	"github.com/gokatarajesh/sdk-quiz/internal/metrics"
	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/report"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/scoring"
	"github.com/gokatarajesh/sdk-quiz/internal/results"
)

var (
	// ErrPlayerRequired means the start request named no player.
	ErrPlayerRequired = errors.New("player is required")
	// ErrInvalidFilter means the count or difficulty could not be used.
	ErrInvalidFilter = errors.New("invalid question filter")
)

// Store persists session records.
type Store interface {
	Lock(ctx context.Context, id uuid.UUID) (func() error, error)
	Save(ctx context.Context, rec *Record) error
	Load(ctx context.Context, id uuid.UUID) (*Record, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(sessionID uuid.UUID, player, bank string) (string, error)
}

// Scoreboard receives completed sessions.
type Scoreboard interface {
	Record(ctx context.Context, req leaderboard.RecordRequest) error
}

// ServiceOptions tune the session service.
type ServiceOptions struct {
	DefaultCount int
	Weighting    string
	Now          func() time.Time
}

// Service runs isolated quiz sessions for many players.
type Service struct {
	catalog  *question.Catalog
	selector *quiz.Selector
	store    Store
	tokens   TokenIssuer
	results  results.Store
	board    Scoreboard
	metrics  *metrics.Quiz
	runner   *quiz.Runner
	opts     ServiceOptions
	logger   zerolog.Logger
}

// NewService wires the session service. resultStore and board may be nil.
func NewService(
	catalog *question.Catalog,
	selector *quiz.Selector,
	store Store,
	tokens TokenIssuer,
	resultStore results.Store,
	board Scoreboard,
	m *metrics.Quiz,
	opts ServiceOptions,
	logger zerolog.Logger,
) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Weighting == "" {
		opts.Weighting = "flat"
	}
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		catalog:  catalog,
		selector: selector,
		store:    store,
		tokens:   tokens,
		results:  resultStore,
		board:    board,
		metrics:  m,
		runner:   quiz.NewRunner(logger),
		opts:     opts,
		logger:   logger.With().Str("component", "session_service").Logger(),
	}
}

// BankSummary describes a bank without its questions.
type BankSummary struct {
	Name         string         `json:"name"`
	Title        string         `json:"title"`
	Style        string         `json:"style"`
	Questions    int            `json:"questions"`
	QuickCount   int            `json:"quick_count"`
	Categories   []string       `json:"categories"`
	Difficulties map[string]int `json:"difficulties"`
}

// Banks lists the catalog.
func (s *Service) Banks() []BankSummary {
	banks := s.catalog.Banks()
	out := make([]BankSummary, 0, len(banks))
	for _, b := range banks {
		diffs := make(map[string]int)
		for d, n := range b.CountByDifficulty() {
			diffs[string(d)] = n
		}
		out = append(out, BankSummary{
			Name:         b.Name,
			Title:        b.Title,
			Style:        string(b.Style),
			Questions:    len(b.Questions),
			QuickCount:   b.QuickCount,
			Categories:   b.Categories(),
			Difficulties: diffs,
		})
	}
	return out
}

// HasBank reports whether name is in the catalog.
func (s *Service) HasBank(name string) bool {
	_, err := s.catalog.Bank(name)
	return err == nil
}

// Start selects questions, stores a new session and issues its token.
func (s *Service) Start(ctx context.Context, req StartRequest) (*Started, error) {
	bank, err := s.catalog.Bank(req.Bank)
	if err != nil {
		return nil, err
	}
	player := strings.TrimSpace(req.Player)
	if player == "" {
		return nil, ErrPlayerRequired
	}

	filter, err := s.filterFor(req)
	if err != nil {
		return nil, err
	}
	qs, err := s.selector.Select(bank.LoadAll(), filter)
	if err != nil {
		return nil, err
	}

	sess, err := quiz.NewSession(qs, quiz.Options{Style: bank.Style, Engine: s.engine(), Now: s.opts.Now})
	if err != nil {
		return nil, err
	}
	first, err := sess.Present()
	if err != nil {
		return nil, err
	}

	now := s.opts.Now().UTC()
	rec := &Record{
		ID:        uuid.New(),
		Bank:      bank.Name,
		Player:    player,
		Status:    StatusActive,
		Filter:    filter,
		Weighting: s.opts.Weighting,
		State:     sess.State(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(rec.ID, player, bank.Name)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.metrics.Started(bank.Name)
	s.logger.Info().
		Str("session_id", rec.ID.String()).
		Str("bank", bank.Name).
		Str("player", player).
		Int("questions", sess.Total()).
		Msg("session started")

	return &Started{
		SessionID: rec.ID,
		Token:     token,
		Bank:      bank.Name,
		Title:     bank.Title,
		Total:     sess.Total(),
		Style:     string(sess.Style()),
		Question:  NewQuestionView(1, sess.Total(), first, sess.Style()),
	}, nil
}

func (s *Service) filterFor(req StartRequest) (quiz.Filter, error) {
	f := quiz.Filter{Count: req.Count, Category: req.Category, Randomize: true}
	if f.Count < 0 {
		return quiz.Filter{}, fmt.Errorf("%w: count must not be negative", ErrInvalidFilter)
	}
	if f.Count == 0 {
		f.Count = s.opts.DefaultCount
	}
	if req.Difficulty != "" {
		d, err := question.ParseDifficulty(req.Difficulty)
		if err != nil {
			return quiz.Filter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		f.Difficulty = d
	}
	if req.Randomize != nil {
		f.Randomize = *req.Randomize
	}
	return f, nil
}

// Current returns the question waiting for an answer.
func (s *Service) Current(ctx context.Context, id uuid.UUID) (QuestionView, error) {
	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return QuestionView{}, err
	}
	sess := s.restore(rec)
	q, ok := sess.Current()
	if !ok {
		return QuestionView{}, quiz.ErrSessionComplete
	}
	return NewQuestionView(sess.Position()+1, sess.Total(), q, sess.Style()), nil
}

// Submit scores one answer. An invalid key returns quiz.ErrInvalidSelection and
// leaves the session where it was.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, answer string) (AnswerResult, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return AnswerResult{}, err
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("release session lock")
		}
	}()

	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return AnswerResult{}, err
	}
	sess := s.restore(rec)

	out, err := sess.Submit(answer)
	if errors.Is(err, quiz.ErrInvalidSelection) {
		s.metrics.Invalid(rec.Bank)
		return AnswerResult{}, err
	}
	if err != nil {
		return AnswerResult{}, err
	}
	s.metrics.Answered(rec.Bank, out.Answered.Correct)

	res := newAnswerResult(out.Answered, sess.Style())
	res.Remaining = out.Remaining
	res.Done = out.Done
	if !out.Done {
		next, err := sess.Present()
		if err != nil {
			return AnswerResult{}, err
		}
		view := NewQuestionView(sess.Position()+1, sess.Total(), next, sess.Style())
		res.Next = &view
	}

	rec.State = sess.State()
	if out.Done {
		rep, err := s.finish(ctx, rec, sess)
		if err != nil {
			return AnswerResult{}, err
		}
		res.Report = rep
	}
	rec.UpdatedAt = s.opts.Now().UTC()
	if err := s.store.Save(ctx, rec); err != nil {
		return AnswerResult{}, err
	}
	return res, nil
}

// Report returns the final report of a completed session.
func (s *Service) Report(ctx context.Context, id uuid.UUID) (report.Result, error) {
	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return report.Result{}, err
	}
	if rec.Status != StatusCompleted || rec.Report == nil {
		return report.Result{}, ErrInProgress
	}
	return *rec.Report, nil
}

// History lists a player's stored results, newest first.
func (s *Service) History(ctx context.Context, player string, limit int) ([]results.Record, error) {
	if s.results == nil {
		return []results.Record{}, nil
	}
	recs, err := s.results.Recent(ctx, player, limit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []results.Record{}
	}
	return recs, nil
}

// Play drives the remaining questions of a session through view and in,
// persisting after every scored answer. An interrupted run keeps its progress.
// Each write first checks the stored record still holds exactly the answers this
// run has seen; otherwise Play stops with ErrStale and writes nothing.
func (s *Service) Play(ctx context.Context, id uuid.UUID, view quiz.View, in quiz.Prompter) (*report.Result, error) {
	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == StatusCompleted {
		return nil, quiz.ErrSessionComplete
	}
	sess := s.restore(rec)

	pv := &persistingView{View: view, svc: s, rec: rec, sess: sess, persisted: len(rec.State.Answers)}
	if _, err := s.runner.Run(ctx, sess, pv, in); err != nil {
		return nil, err
	}

	var rep *report.Result
	err = s.withLock(ctx, id, func() error {
		if err := s.checkFresh(ctx, id, len(sess.Answers())); err != nil {
			return err
		}
		rec.State = sess.State()
		var err error
		if rep, err = s.finish(ctx, rec, sess); err != nil {
			return err
		}
		rec.UpdatedAt = s.opts.Now().UTC()
		return s.store.Save(ctx, rec)
	})
	return rep, err
}

// checkFresh must run under the session lock. It fails unless the stored record
// is still active with exactly answered answers.
func (s *Service) checkFresh(ctx context.Context, id uuid.UUID, answered int) error {
	stored, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if stored.Status == StatusCompleted {
		return fmt.Errorf("%w: %w", ErrStale, quiz.ErrSessionComplete)
	}
	if got := len(stored.State.Answers); got != answered {
		return fmt.Errorf("%w: stored %d answers, expected %d", ErrStale, got, answered)
	}
	return nil
}

// finish builds the report and hands the result to storage, leaderboard and metrics.
// Storage and leaderboard failures are logged; the session still completes.
func (s *Service) finish(ctx context.Context, rec *Record, sess *quiz.Session) (*report.Result, error) {
	bank, err := s.catalog.Bank(rec.Bank)
	if err != nil {
		return nil, err
	}
	rep, err := report.ForBank(bank, sess.Summary())
	if err != nil {
		return nil, err
	}
	rec.Report = &rep
	rec.Status = StatusCompleted

	s.metrics.Completed(rec.Bank, rep.Mastery.Label, rep.Percentage)
	completedAt := s.opts.Now()

	if s.results != nil {
		if err := s.results.Save(ctx, results.FromReport(rec.ID, rec.Player, rep, completedAt)); err != nil {
			s.logger.Error().Err(err).Str("session_id", rec.ID.String()).Msg("failed to store result")
		}
	}
	if s.board != nil {
		err := s.board.Record(ctx, leaderboard.RecordRequest{
			Bank:        rec.Bank,
			Player:      rec.Player,
			Percentage:  rep.Percentage,
			Mastery:     rep.Mastery.Label,
			CompletedAt: completedAt,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", rec.ID.String()).Msg("failed to update leaderboard")
		}
	}

	s.logger.Info().
		Str("session_id", rec.ID.String()).
		Str("bank", rec.Bank).
		Str("player", rec.Player).
		Float64("percentage", rep.Percentage).
		Str("mastery", rep.Mastery.Label).
		Msg("session completed")
	return &rep, nil
}

func (s *Service) withLock(ctx context.Context, id uuid.UUID, fn func() error) error {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("release session lock")
		}
	}()
	return fn()
}

func (s *Service) restore(rec *Record) *quiz.Session {
	weighting := rec.Weighting
	if weighting == "" {
		weighting = s.opts.Weighting
	}
	return quiz.RestoreSession(rec.State, quiz.Options{
		Engine: scoring.NewEngine(scoring.ConfigFor(weighting)),
		Now:    s.opts.Now,
	})
}

func (s *Service) engine() *scoring.Engine {
	return scoring.NewEngine(scoring.ConfigFor(s.opts.Weighting))
}

// persistingView saves the session after each scored answer before rendering it.
type persistingView struct {
	quiz.View
	svc       *Service
	rec       *Record
	sess      *quiz.Session
	persisted int // answers known to be in the store
}

func (v *persistingView) ShowInvalid(ctx context.Context, raw string, keys []string) error {
	v.svc.metrics.Invalid(v.rec.Bank)
	return v.View.ShowInvalid(ctx, raw, keys)
}

func (v *persistingView) ShowFeedback(ctx context.Context, a quiz.AnsweredQuestion) error {
	err := v.svc.withLock(ctx, v.rec.ID, func() error {
		if err := v.svc.checkFresh(ctx, v.rec.ID, v.persisted); err != nil {
			return err
		}
		v.rec.State = v.sess.State()
		v.rec.UpdatedAt = v.svc.opts.Now().UTC()
		return v.svc.store.Save(ctx, v.rec)
	})
	if err != nil {
		return fmt.Errorf("persist answer: %w", err)
	}
	v.persisted = len(v.rec.State.Answers)
	v.svc.metrics.Answered(v.rec.Bank, a.Correct)
	return v.View.ShowFeedback(ctx, a)
}
