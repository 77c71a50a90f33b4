package quiz

import (
	"fmt"
	"time"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/scoring"
)

// Phase is where the current question sits in its lifecycle.
type Phase string

const (
	PhasePresented      Phase = "presented"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseValidated      Phase = "validated"
	PhaseScored         Phase = "scored"
	PhaseComplete       Phase = "complete"
)

// AnsweredQuestion is one accepted response. It never changes once recorded.
type AnsweredQuestion struct {
	Question   question.Question `json:"question"`
	Choice     int               `json:"choice"`
	Key        string            `json:"key"`
	Correct    bool              `json:"correct"`
	Points     int               `json:"points"`
	Possible   int               `json:"possible"`
	AnsweredAt time.Time         `json:"answered_at"`
}

// Outcome is returned after a valid answer is scored.
type Outcome struct {
	Answered  AnsweredQuestion `json:"answered"`
	Remaining int              `json:"remaining"`
	Done      bool             `json:"done"`
}

// State is the serializable form of a session.
type State struct {
	Style      question.AnswerStyle `json:"style"`
	Questions  []question.Question  `json:"questions"`
	Answers    []AnsweredQuestion   `json:"answers"`
	Phase      Phase                `json:"phase"`
	Tallies    scoring.Aggregator   `json:"tallies"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

// Options configures a session.
type Options struct {
	Style  question.AnswerStyle
	Engine *scoring.Engine
	Now    func() time.Time
}

func (o *Options) defaults() {
	if o.Style == "" {
		o.Style = question.StyleLetter
	}
	if o.Engine == nil {
		o.Engine = scoring.NewEngine(scoring.DefaultConfig())
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Session owns one run: the selected questions, the answers so far and the tallies.
// It is not safe for concurrent use.
type Session struct {
	st     State
	engine *scoring.Engine
	now    func() time.Time
}

// NewSession starts a session over qs.
func NewSession(qs []question.Question, opts Options) (*Session, error) {
	if len(qs) == 0 {
		return nil, ErrNoMatchingQuestions
	}
	opts.defaults()
	return &Session{
		st: State{
			Style:     opts.Style,
			Questions: append([]question.Question(nil), qs...),
			Answers:   make([]AnsweredQuestion, 0, len(qs)),
			Phase:     PhasePresented,
		},
		engine: opts.Engine,
		now:    opts.Now,
	}, nil
}

// RestoreSession rebuilds a session from a saved State. opts.Style is ignored.
func RestoreSession(st State, opts Options) *Session {
	opts.defaults()
	if st.Style == "" {
		st.Style = question.StyleLetter
	}
	return &Session{st: st, engine: opts.Engine, now: opts.Now}
}

// State returns a copy of the session's serializable state.
func (s *Session) State() State {
	st := s.st
	st.Questions = append([]question.Question(nil), s.st.Questions...)
	st.Answers = append([]AnsweredQuestion(nil), s.st.Answers...)
	st.Tallies.Categories = append([]scoring.Group(nil), s.st.Tallies.Categories...)
	st.Tallies.Difficulties = append([]scoring.Group(nil), s.st.Tallies.Difficulties...)
	return st
}

// Style is the answer-key style for this session.
func (s *Session) Style() question.AnswerStyle { return s.st.Style }

// Phase reports the lifecycle phase of the current question.
func (s *Session) Phase() Phase { return s.st.Phase }

// Total is the number of selected questions.
func (s *Session) Total() int { return len(s.st.Questions) }

// Position is the 0-based index of the current question.
func (s *Session) Position() int { return len(s.st.Answers) }

// Done reports whether every question has been scored.
func (s *Session) Done() bool { return len(s.st.Answers) == len(s.st.Questions) }

// Answers returns the accepted answers in order.
func (s *Session) Answers() []AnsweredQuestion {
	return append([]AnsweredQuestion(nil), s.st.Answers...)
}

// Present moves the current question to AwaitingAnswer and returns it with
// Points set to what the scoring engine awards for it. The clock starts on the first call.
func (s *Session) Present() (question.Question, error) {
	if s.Done() {
		return question.Question{}, ErrSessionComplete
	}
	if s.st.StartedAt.IsZero() {
		s.st.StartedAt = s.now()
	}
	s.st.Phase = PhaseAwaitingAnswer
	return s.weighted(s.st.Questions[s.Position()]), nil
}

// SelectionError reports an answer that is not one of the offered keys.
// It matches ErrInvalidSelection with errors.Is.
type SelectionError struct {
	Answer string
	Keys   []string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%s: %q (expected one of %v)", ErrInvalidSelection, e.Answer, e.Keys)
}

func (e *SelectionError) Unwrap() error { return ErrInvalidSelection }

// Submit validates raw against the current question's option keys and scores it.
// An invalid key returns ErrInvalidSelection and leaves the session untouched.
func (s *Session) Submit(raw string) (Outcome, error) {
	if s.Done() {
		return Outcome{}, ErrSessionComplete
	}
	q := s.st.Questions[s.Position()]
	choice, ok := s.st.Style.Parse(raw, len(q.Options))
	if !ok {
		return Outcome{}, &SelectionError{Answer: raw, Keys: s.st.Style.Keys(len(q.Options))}
	}
	if s.st.Phase == PhasePresented {
		if _, err := s.Present(); err != nil {
			return Outcome{}, err
		}
	}
	s.st.Phase = PhaseValidated

	now := s.now()
	possible := s.engine.Points(q)
	correct := q.IsCorrect(choice)
	earned := 0
	if correct {
		earned = possible
	}
	answered := AnsweredQuestion{
		Question:   q,
		Choice:     choice,
		Key:        s.st.Style.Key(choice),
		Correct:    correct,
		Points:     earned,
		Possible:   possible,
		AnsweredAt: now,
	}
	s.st.Answers = append(s.st.Answers, answered)
	s.st.Tallies.Record(q, correct, possible)
	s.st.Phase = PhaseScored

	out := Outcome{Answered: answered, Remaining: s.Total() - s.Position(), Done: s.Done()}
	if out.Done {
		s.st.FinishedAt = now
		s.st.Phase = PhaseComplete
	} else {
		s.st.Phase = PhasePresented
	}
	return out, nil
}

// Current returns the question waiting for an answer, weighted like Present.
func (s *Session) Current() (question.Question, bool) {
	if s.Done() {
		return question.Question{}, false
	}
	return s.weighted(s.st.Questions[s.Position()]), true
}

func (s *Session) weighted(q question.Question) question.Question {
	q.Points = s.engine.Points(q)
	return q
}

// Elapsed runs from the first presentation to the last scored answer.
func (s *Session) Elapsed() time.Duration {
	if s.st.StartedAt.IsZero() {
		return 0
	}
	if !s.st.FinishedAt.IsZero() {
		return s.st.FinishedAt.Sub(s.st.StartedAt)
	}
	return s.now().Sub(s.st.StartedAt)
}

// Summary aggregates the session so far.
func (s *Session) Summary() scoring.Summary {
	return s.st.Tallies.Summarize(s.Elapsed())
}
