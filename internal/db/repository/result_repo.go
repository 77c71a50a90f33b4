package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/sdk-quiz/internal/db/queries"
	"github.com/gokatarajesh/sdk-quiz/internal/results"
)

type resultStore interface {
	InsertQuizResult(ctx context.Context, arg queries.InsertQuizResultParams) error
	ListResultsByPlayer(ctx context.Context, arg queries.ListResultsByPlayerParams) ([]queries.QuizResult, error)
}

// ResultRepository stores finished quiz reports in Postgres. It satisfies results.Store.
type ResultRepository struct {
	store resultStore
}

// NewResultRepository wraps the generated queries for result persistence.
func NewResultRepository(store resultStore) *ResultRepository {
	return &ResultRepository{store: store}
}

var _ results.Store = (*ResultRepository)(nil)

// Save inserts one result row.
func (r *ResultRepository) Save(ctx context.Context, rec results.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	cats, diffs, recs, err := results.MarshalDetails(rec)
	if err != nil {
		return err
	}
	var id pgtype.UUID
	if err := id.Scan(rec.ID.String()); err != nil {
		return fmt.Errorf("result id: %w", err)
	}

	err = r.store.InsertQuizResult(ctx, queries.InsertQuizResultParams{
		ID:              id,
		Bank:            rec.Bank,
		Title:           rec.Title,
		Player:          rec.Player,
		Questions:       int32(rec.Questions),
		Correct:         int32(rec.Correct),
		PointsEarned:    int32(rec.PointsEarned),
		PointsPossible:  int32(rec.PointsPossible),
		Percentage:      rec.Percentage,
		Mastery:         rec.Mastery,
		ElapsedMs:       rec.Elapsed.Milliseconds(),
		Categories:      cats,
		Difficulties:    diffs,
		Recommendations: recs,
		CompletedAt:     pgtype.Timestamptz{Time: rec.CompletedAt.UTC(), Valid: true},
	})
	if err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

// Recent lists a player's newest results.
func (r *ResultRepository) Recent(ctx context.Context, player string, limit int) ([]results.Record, error) {
	rows, err := r.store.ListResultsByPlayer(ctx, queries.ListResultsByPlayerParams{
		Player: player,
		Limit:  int32(results.ClampLimit(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}

	out := make([]results.Record, 0, len(rows))
	for _, row := range rows {
		rec := results.Record{
			ID:             uuid.UUID(row.ID.Bytes),
			Bank:           row.Bank,
			Title:          row.Title,
			Player:         row.Player,
			Questions:      int(row.Questions),
			Correct:        int(row.Correct),
			PointsEarned:   int(row.PointsEarned),
			PointsPossible: int(row.PointsPossible),
			Percentage:     row.Percentage,
			Mastery:        row.Mastery,
			Elapsed:        time.Duration(row.ElapsedMs) * time.Millisecond,
			CompletedAt:    row.CompletedAt.Time.UTC(),
		}
		if err := results.UnmarshalDetails(&rec, row.Categories, row.Difficulties, row.Recommendations); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
