// Package results persists finished quiz reports.
package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/sdk-quiz/internal/quiz/report"
)

// ErrInvalidRecord is returned when a record is missing its identity.
var ErrInvalidRecord = errors.New("result record needs an id, bank and player")

// Record is one completed session as stored.
type Record struct {
	ID              uuid.UUID          `json:"id"`
	Bank            string             `json:"bank"`
	Title           string             `json:"title"`
	Player          string             `json:"player"`
	Questions       int                `json:"questions"`
	Correct         int                `json:"correct"`
	PointsEarned    int                `json:"points_earned"`
	PointsPossible  int                `json:"points_possible"`
	Percentage      float64            `json:"percentage"`
	Mastery         string             `json:"mastery"`
	Elapsed         time.Duration      `json:"elapsed"`
	Categories      []report.Breakdown `json:"categories"`
	Difficulties    []report.Breakdown `json:"difficulties"`
	Recommendations []string           `json:"recommendations"`
	CompletedAt     time.Time          `json:"completed_at"`
}

// Validate checks the fields every store needs.
func (r Record) Validate() error {
	if r.ID == uuid.Nil || r.Bank == "" || r.Player == "" {
		return ErrInvalidRecord
	}
	return nil
}

// Store saves and lists results.
type Store interface {
	Save(ctx context.Context, rec Record) error
	// Recent returns a player's newest results first.
	Recent(ctx context.Context, player string, limit int) ([]Record, error)
}

// FromReport flattens a report into a record.
func FromReport(id uuid.UUID, player string, res report.Result, completedAt time.Time) Record {
	return Record{
		ID:              id,
		Bank:            res.Bank,
		Title:           res.Title,
		Player:          player,
		Questions:       res.Questions,
		Correct:         res.Correct,
		PointsEarned:    res.PointsEarned,
		PointsPossible:  res.PointsPossible,
		Percentage:      res.Percentage,
		Mastery:         res.Mastery.Label,
		Elapsed:         res.Elapsed,
		Categories:      res.Categories,
		Difficulties:    res.Difficulties,
		Recommendations: res.Recommendations,
		CompletedAt:     completedAt.UTC(),
	}
}

// ClampLimit bounds a page size to 1..100, defaulting to 20.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

// MarshalDetails encodes the nested report parts of rec as JSON documents.
func MarshalDetails(rec Record) (cats, diffs, recs []byte, err error) {
	if rec.Categories == nil {
		rec.Categories = []report.Breakdown{}
	}
	if rec.Difficulties == nil {
		rec.Difficulties = []report.Breakdown{}
	}
	if rec.Recommendations == nil {
		rec.Recommendations = []string{}
	}
	if cats, err = json.Marshal(rec.Categories); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal categories: %w", err)
	}
	if diffs, err = json.Marshal(rec.Difficulties); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal difficulties: %w", err)
	}
	if recs, err = json.Marshal(rec.Recommendations); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal recommendations: %w", err)
	}
	return cats, diffs, recs, nil
}

// UnmarshalDetails is the inverse of MarshalDetails.
func UnmarshalDetails(rec *Record, cats, diffs, recs []byte) error {
	if err := json.Unmarshal(cats, &rec.Categories); err != nil {
		return fmt.Errorf("decode categories: %w", err)
	}
	if err := json.Unmarshal(diffs, &rec.Difficulties); err != nil {
		return fmt.Errorf("decode difficulties: %w", err)
	}
	if err := json.Unmarshal(recs, &rec.Recommendations); err != nil {
		return fmt.Errorf("decode recommendations: %w", err)
	}
	return nil
}
