package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/sdk-quiz/internal/db/queries"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz/report"
	"github.com/gokatarajesh/sdk-quiz/internal/results"
)

type mockResultStore struct {
	mock.Mock
}

func (m *mockResultStore) InsertQuizResult(ctx context.Context, arg queries.InsertQuizResultParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockResultStore) ListResultsByPlayer(ctx context.Context, arg queries.ListResultsByPlayerParams) ([]queries.QuizResult, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]queries.QuizResult), args.Error(1)
}

func TestResultRepository_Save(t *testing.T) {
	store := new(mockResultStore)
	repo := NewResultRepository(store)

	id := uuid.New()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := results.Record{
		ID:             id,
		Bank:           "guardrails",
		Title:          "Guardrails",
		Player:         "ada",
		Questions:      3,
		Correct:        2,
		PointsEarned:   4,
		PointsPossible: 6,
		Percentage:     66.6,
		Mastery:        "Developing",
		Elapsed:        1500 * time.Millisecond,
		CompletedAt:    at,
	}

	store.On("InsertQuizResult", mock.Anything, mock.MatchedBy(func(p queries.InsertQuizResultParams) bool {
		return uuid.UUID(p.ID.Bytes) == id &&
			p.Player == "ada" &&
			p.PointsEarned == 4 &&
			p.ElapsedMs == 1500 &&
			string(p.Categories) == "[]" &&
			string(p.Recommendations) == "[]" &&
			p.CompletedAt.Time.Equal(at)
	})).Return(nil)

	require.NoError(t, repo.Save(context.Background(), rec))
	store.AssertExpectations(t)
}

func TestResultRepository_SaveRejectsInvalid(t *testing.T) {
	store := new(mockResultStore)
	repo := NewResultRepository(store)

	err := repo.Save(context.Background(), results.Record{Bank: "agents"})
	assert.ErrorIs(t, err, results.ErrInvalidRecord)
	store.AssertNotCalled(t, "InsertQuizResult", mock.Anything, mock.Anything)
}

func TestResultRepository_Recent(t *testing.T) {
	store := new(mockResultStore)
	repo := NewResultRepository(store)

	at := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)
	row := queries.QuizResult{
		ID:              uuidFromByte(7),
		Bank:            "agents",
		Player:          "ada",
		Questions:       2,
		Correct:         2,
		PointsEarned:    2,
		PointsPossible:  2,
		Percentage:      100,
		Mastery:         "Expert",
		ElapsedMs:       2000,
		Categories:      []byte(`[{"name":"Basics","correct":2,"attempted":2,"points_earned":2,"points_possible":2,"percentage":100}]`),
		Difficulties:    []byte(`[]`),
		Recommendations: []byte(`["🎉 Outstanding mastery. Help others learn this topic"]`),
		CompletedAt:     pgtype.Timestamptz{Time: at, Valid: true},
	}
	store.On("ListResultsByPlayer", mock.Anything, queries.ListResultsByPlayerParams{Player: "ada", Limit: 20}).
		Return([]queries.QuizResult{row}, nil)

	got, err := repo.Recent(context.Background(), "ada", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uuid.UUID(row.ID.Bytes), got[0].ID)
	assert.Equal(t, 2*time.Second, got[0].Elapsed)
	assert.Equal(t, []report.Breakdown{{Name: "Basics", Correct: 2, Attempted: 2, Earned: 2, Possible: 2, Percentage: 100}}, got[0].Categories)
	assert.Len(t, got[0].Recommendations, 1)
	assert.True(t, at.Equal(got[0].CompletedAt))
	store.AssertExpectations(t)
}

func TestResultRepository_RecentError(t *testing.T) {
	store := new(mockResultStore)
	repo := NewResultRepository(store)

	store.On("ListResultsByPlayer", mock.Anything, mock.Anything).Return([]queries.QuizResult(nil), errors.New("boom"))

	_, err := repo.Recent(context.Background(), "ada", 5)
	assert.Error(t, err)
}
