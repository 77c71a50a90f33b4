package leaderboard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/db/queries"
)

type snapshotWriter interface {
	InsertLeaderboardSnapshot(ctx context.Context, arg queries.InsertLeaderboardSnapshotParams) (queries.LeaderboardSnapshot, error)
}

// SnapshotWorker periodically persists Redis leaderboards into Postgres.
type SnapshotWorker struct {
	svc      *Service
	store    snapshotWriter
	banks    []string
	logger   zerolog.Logger
	interval time.Duration
	topN     int
	now      func() time.Time
}

func NewSnapshotWorker(svc *Service, store snapshotWriter, banks []string, interval time.Duration, topN int, logger zerolog.Logger) *SnapshotWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if topN <= 0 {
		topN = 50
	}
	return &SnapshotWorker{
		svc:      svc,
		store:    store,
		banks:    banks,
		logger:   logger.With().Str("component", "leaderboard_snapshot_worker").Logger(),
		interval: interval,
		topN:     topN,
		now:      time.Now,
	}
}

// Run blocks until context cancellation.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if w.svc == nil || w.store == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	for _, bank := range w.banks {
		if err := w.snapshotBank(ctx, bank); err != nil {
			w.logger.Warn().Err(err).Str("bank", bank).Msg("snapshot failed")
		}
	}
}

func (w *SnapshotWorker) snapshotBank(ctx context.Context, bank string) error {
	entries, err := w.svc.Top(ctx, bank, w.topN)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	sourceHash := sha256.Sum256(data)
	now := w.now().UTC()

	params := queries.InsertLeaderboardSnapshotParams{
		Bank: bank,
		GeneratedAt: pgtype.Timestamptz{
			Time:  now,
			Valid: true,
		},
		Entries:    data,
		SourceHash: hex.EncodeToString(sourceHash[:]),
	}

	if _, err := w.store.InsertLeaderboardSnapshot(ctx, params); err != nil {
		return err
	}

	w.logger.Info().
		Str("bank", bank).
		Int("entries", len(entries)).
		Time("generated_at", now).
		Msg("leaderboard snapshot persisted")

	return nil
}
