package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/sdk-quiz/internal/quiz/report"
)

func sampleRecord(player string, at time.Time, pct float64) Record {
	return Record{
		ID:             uuid.New(),
		Bank:           "agents",
		Title:          "Agents",
		Player:         player,
		Questions:      4,
		Correct:        3,
		PointsEarned:   3,
		PointsPossible: 4,
		Percentage:     pct,
		Mastery:        "Developing",
		Elapsed:        90 * time.Second,
		Categories: []report.Breakdown{
			{Name: "Basics", Correct: 2, Attempted: 2, Earned: 2, Possible: 2, Percentage: 100},
		},
		Difficulties: []report.Breakdown{
			{Name: "Beginner", Correct: 3, Attempted: 4, Earned: 3, Possible: 4, Percentage: 75},
		},
		Recommendations: []string{"📚 Focus on intermediate concepts and practical use"},
		CompletedAt:     at,
	}
}

func TestSQLiteStoreSaveAndRecent(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, ":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	older := sampleRecord("ada", base, 50)
	newer := sampleRecord("ada", base.Add(time.Hour), 75)
	other := sampleRecord("linus", base.Add(2*time.Hour), 100)
	for _, rec := range []Record{older, newer, other} {
		require.NoError(t, store.Save(ctx, rec))
	}

	got, err := store.Recent(ctx, "ada", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
	assert.Equal(t, newer.Categories, got[0].Categories)
	assert.Equal(t, newer.Difficulties, got[0].Difficulties)
	assert.Equal(t, newer.Recommendations, got[0].Recommendations)
	assert.Equal(t, 90*time.Second, got[0].Elapsed)
	assert.True(t, newer.CompletedAt.Equal(got[0].CompletedAt))

	all, err := store.Recent(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other.ID, all[0].ID)
}

func TestSQLiteStoreRejectsInvalidRecord(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, ":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.Save(ctx, Record{Bank: "agents", Player: "ada"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := OpenSQLite(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	rec := sampleRecord("ada", time.Now(), 80)
	require.NoError(t, store.Save(ctx, rec))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.Recent(ctx, "ada", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
}

func TestFromReport(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	res := report.Result{
		Bank:           "runner",
		Title:          "Runner",
		Questions:      2,
		Correct:        1,
		PointsEarned:   1,
		PointsPossible: 2,
		Percentage:     50,
		Mastery:        report.Rung{Label: "Needs Significant Study"},
	}

	rec := FromReport(id, "ada", res, at)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "runner", rec.Bank)
	assert.Equal(t, "ada", rec.Player)
	assert.Equal(t, "Needs Significant Study", rec.Mastery)
	assert.Equal(t, time.UTC, rec.CompletedAt.Location())
	assert.NoError(t, rec.Validate())
}
