package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/report"
)

var (
	// ErrNotFound means the session id is unknown or expired.
	ErrNotFound = errors.New("session not found")
	// ErrInProgress means a report was requested before the last answer.
	ErrInProgress = errors.New("session still in progress")
	// ErrBusy means another request holds the session lock.
	ErrBusy = errors.New("session is busy")
	// ErrStale means the stored session moved on since it was loaded,
	// for example an answer arrived over HTTP during WebSocket play.
	ErrStale = errors.New("session was changed by another client")
)

// Status of a served session.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Record is what the store keeps per session.
type Record struct {
	ID        uuid.UUID      `json:"id"`
	Bank      string         `json:"bank"`
	Player    string         `json:"player"`
	Status    string         `json:"status"`
	Filter    quiz.Filter    `json:"filter"`
	Weighting string         `json:"weighting"`
	State     quiz.State     `json:"state"`
	Report    *report.Result `json:"report,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StartRequest opens a session.
type StartRequest struct {
	Bank       string `json:"bank"`
	Player     string `json:"player"`
	Count      int    `json:"count,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Category   string `json:"category,omitempty"`
	Randomize  *bool  `json:"randomize,omitempty"`
}

// Started is returned once a session exists.
type Started struct {
	SessionID uuid.UUID    `json:"session_id"`
	Token     string       `json:"token"`
	Bank      string       `json:"bank"`
	Title     string       `json:"title"`
	Total     int          `json:"total"`
	Style     string       `json:"style"`
	Question  QuestionView `json:"question"`
}

// QuestionView is a question as shown to the player: no answer, no explanation.
type QuestionView struct {
	Number     int      `json:"number"`
	Total      int      `json:"total"`
	ID         int      `json:"id"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Points     int      `json:"points"`
	Prompt     string   `json:"prompt"`
	Code       string   `json:"code,omitempty"`
	Keys       []string `json:"keys"`
	Options    []string `json:"options"`
}

// NewQuestionView hides the answer of q.
func NewQuestionView(n, total int, q question.Question, style question.AnswerStyle) QuestionView {
	return QuestionView{
		Number:     n,
		Total:      total,
		ID:         q.ID,
		Category:   q.Category,
		Difficulty: string(q.Difficulty),
		Points:     q.Points,
		Prompt:     q.Prompt,
		Code:       q.CodeExample,
		Keys:       style.Keys(len(q.Options)),
		Options:    append([]string(nil), q.Options...),
	}
}

// AnswerResult is the feedback for one accepted answer.
type AnswerResult struct {
	Correct       bool           `json:"correct"`
	Key           string         `json:"key"`
	Points        int            `json:"points"`
	CorrectKey    string         `json:"correct_key"`
	CorrectOption string         `json:"correct_option"`
	Explanation   string         `json:"explanation"`
	Insight       string         `json:"insight,omitempty"`
	Remaining     int            `json:"remaining"`
	Done          bool           `json:"done"`
	Next          *QuestionView  `json:"next,omitempty"`
	Report        *report.Result `json:"report,omitempty"`
}

func newAnswerResult(a quiz.AnsweredQuestion, style question.AnswerStyle) AnswerResult {
	return AnswerResult{
		Correct:       a.Correct,
		Key:           a.Key,
		Points:        a.Points,
		CorrectKey:    style.Key(a.Question.Answer),
		CorrectOption: a.Question.CorrectOption(),
		Explanation:   a.Question.Explanation,
		Insight:       a.Question.Insight,
	}
}
