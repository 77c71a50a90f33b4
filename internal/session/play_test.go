package session

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz"
)

// linesPrompter replays answers; before[n] runs just before the nth read.
type linesPrompter struct {
	lines  []string
	before map[int]func()
	reads  int
}

func (p *linesPrompter) ReadLine(context.Context, string) (string, error) {
	p.reads++
	if f := p.before[p.reads]; f != nil {
		f()
	}
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	next := p.lines[0]
	p.lines = p.lines[1:]
	return next, nil
}

type feedbackView struct {
	feedback []quiz.AnsweredQuestion
}

func (v *feedbackView) ShowQuestion(context.Context, int, int, question.Question, question.AnswerStyle) error {
	return nil
}

func (v *feedbackView) ShowInvalid(context.Context, string, []string) error { return nil }

func (v *feedbackView) ShowFeedback(_ context.Context, a quiz.AnsweredQuestion) error {
	v.feedback = append(v.feedback, a)
	return nil
}

func TestPlayCompletesAndRecordsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	started, err := env.svc.Start(ctx, StartRequest{Bank: "agents", Player: "ada", Count: 2, Randomize: noShuffle()})
	require.NoError(t, err)
	id := started.SessionID

	rec, err := env.store.Load(ctx, id)
	require.NoError(t, err)
	style := rec.State.Style
	in := &linesPrompter{lines: []string{
		style.Key(rec.State.Questions[0].Answer),
		style.Key(rec.State.Questions[1].Answer),
	}}
	view := &feedbackView{}

	rep, err := env.svc.Play(ctx, id, view, in)
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, 100.0, rep.Percentage)
	assert.Len(t, view.feedback, 2)

	top, err := env.board.Top(ctx, "agents", 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Attempts)

	_, err = env.svc.Play(ctx, id, view, in)
	assert.ErrorIs(t, err, quiz.ErrSessionComplete)
}

func TestPlayStopsWhenAnswerArrivesElsewhere(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	started, err := env.svc.Start(ctx, StartRequest{Bank: "agents", Player: "ada", Count: 2, Randomize: noShuffle()})
	require.NoError(t, err)
	id := started.SessionID

	rec, err := env.store.Load(ctx, id)
	require.NoError(t, err)
	style := rec.State.Style
	q1, q2 := rec.State.Questions[0], rec.State.Questions[1]
	right2 := style.Key(q2.Answer)
	wrong2 := style.Key((q2.Answer + 1) % len(q2.Options))

	var viaHTTP AnswerResult
	in := &linesPrompter{
		lines: []string{style.Key(q1.Answer), wrong2},
		before: map[int]func(){
			// The socket answered Q1; Q2 is submitted over HTTP before the socket answers it.
			2: func() {
				var err error
				viaHTTP, err = env.svc.Submit(ctx, id, right2)
				require.NoError(t, err)
			},
		},
	}
	view := &feedbackView{}

	_, err = env.svc.Play(ctx, id, view, in)
	require.ErrorIs(t, err, ErrStale)
	assert.ErrorIs(t, err, quiz.ErrSessionComplete)
	assert.Len(t, view.feedback, 1, "the stale answer gets no feedback")

	require.True(t, viaHTTP.Done)
	require.NotNil(t, viaHTTP.Report)
	assert.Equal(t, 100.0, viaHTTP.Report.Percentage)

	stored, err := env.store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	require.Len(t, stored.State.Answers, 2)
	assert.Equal(t, right2, stored.State.Answers[1].Key)
	require.NotNil(t, stored.Report)
	assert.Equal(t, 100.0, stored.Report.Percentage)

	top, err := env.board.Top(ctx, "agents", 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Attempts)
	assert.Equal(t, 100.0, top[0].LastPercentage)

	history, err := env.results.Recent(ctx, "ada", 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPlayRejectsStaleFirstAnswer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	started, err := env.svc.Start(ctx, StartRequest{Bank: "agents", Player: "ada", Count: 2, Randomize: noShuffle()})
	require.NoError(t, err)
	id := started.SessionID

	rec, err := env.store.Load(ctx, id)
	require.NoError(t, err)
	key1 := rec.State.Style.Key(rec.State.Questions[0].Answer)

	in := &linesPrompter{
		lines: []string{key1},
		before: map[int]func(){
			1: func() {
				_, err := env.svc.Submit(ctx, id, key1)
				require.NoError(t, err)
			},
		},
	}
	_, err = env.svc.Play(ctx, id, &feedbackView{}, in)
	assert.ErrorIs(t, err, ErrStale)

	stored, err := env.store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.State.Answers, 1)
	assert.Equal(t, StatusActive, stored.Status)
}
