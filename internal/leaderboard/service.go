package leaderboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Entry represents a leaderboard record sent to clients.
type Entry struct {
	Rank           int       `json:"rank"`
	Player         string    `json:"player"`
	BestPercentage float64   `json:"best_percentage"`
	Attempts       int       `json:"attempts"`
	LastPercentage float64   `json:"last_percentage"`
	LastMastery    string    `json:"last_mastery"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RecordRequest captures one completed session.
type RecordRequest struct {
	Bank        string
	Player      string
	Percentage  float64
	Mastery     string
	CompletedAt time.Time
}

// ServiceOptions configures leaderboard service behavior.
type ServiceOptions struct {
	TopN             int
	EntryTTL         time.Duration
	RedisKeyPrefix   string
	SnapshotTopLimit int
}

// Service keeps each player's best score per bank in Redis sorted sets.
type Service struct {
	redis          *redis.Client
	logger         zerolog.Logger
	topN           int
	entryTTL       time.Duration
	prefix         string
	snapshotTopLim int
}

// NewService constructs a leaderboard service instance.
func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "lb"
	}
	snapTop := opts.SnapshotTopLimit
	if snapTop <= 0 {
		snapTop = 100
	}

	return &Service{
		redis:          redis,
		logger:         logger.With().Str("component", "leaderboard").Logger(),
		topN:           topN,
		entryTTL:       opts.EntryTTL,
		prefix:         prefix,
		snapshotTopLim: snapTop,
	}
}

// Record counts an attempt and raises the player's best score when beaten.
func (s *Service) Record(ctx context.Context, req RecordRequest) error {
	if req.Bank == "" || req.Player == "" {
		return fmt.Errorf("leaderboard record needs bank and player")
	}
	if req.CompletedAt.IsZero() {
		req.CompletedAt = time.Now()
	}

	zKey := s.leaderboardKey(req.Bank)
	metaKey := s.metaKey(req.Bank, req.Player)

	pipe := s.redis.TxPipeline()
	pipe.ZAddArgs(ctx, zKey, redis.ZAddArgs{
		GT:      true,
		Members: []redis.Z{{Score: req.Percentage, Member: req.Player}},
	})
	pipe.HIncrBy(ctx, metaKey, "attempts", 1)
	pipe.HSet(ctx, metaKey, map[string]interface{}{
		"last_percentage": strconv.FormatFloat(req.Percentage, 'f', 2, 64),
		"last_mastery":    req.Mastery,
		"updated_at":      req.CompletedAt.UTC().Format(time.RFC3339),
	})
	if s.entryTTL > 0 {
		pipe.Expire(ctx, zKey, s.entryTTL)
		pipe.Expire(ctx, metaKey, s.entryTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update leaderboard %s: %w", req.Bank, err)
	}
	return nil
}

// Top retrieves the best N players of a bank.
func (s *Service) Top(ctx context.Context, bank string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	results, err := s.redis.ZRevRangeWithScores(ctx, s.leaderboardKey(bank), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for _, z := range results {
		player, _ := z.Member.(string)
		entry, err := s.readMeta(ctx, bank, player)
		if err != nil {
			s.logger.Warn().Err(err).Str("player", player).Msg("failed to read leaderboard metadata")
			continue
		}
		entry.BestPercentage = z.Score
		entries = append(entries, entry)
	}
	return ranked(entries), nil
}

// SnapshotTop returns the configured snapshot size for persistence jobs.
func (s *Service) SnapshotTop(ctx context.Context, bank string) ([]Entry, error) {
	return s.Top(ctx, bank, s.snapshotTopLim)
}

func (s *Service) readMeta(ctx context.Context, bank, player string) (Entry, error) {
	data, err := s.redis.HGetAll(ctx, s.metaKey(bank, player)).Result()
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Player: player}
	if len(data) == 0 {
		// No metadata yet; fallback minimal entry.
		return entry, nil
	}
	entry.Attempts = parseInt(data["attempts"])
	entry.LastPercentage = parseFloat(data["last_percentage"])
	entry.LastMastery = data["last_mastery"]
	if ts, err := time.Parse(time.RFC3339, data["updated_at"]); err == nil {
		entry.UpdatedAt = ts
	}
	return entry, nil
}

func (s *Service) leaderboardKey(bank string) string {
	return fmt.Sprintf("%s:%s", s.prefix, bank)
}

func (s *Service) metaKey(bank, player string) string {
	return fmt.Sprintf("%s:%s:meta:%s", s.prefix, bank, player)
}
