package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts ServiceOptions) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewService(client, zerolog.Nop(), opts), mr
}

func TestRecordKeepsBestScore(t *testing.T) {
	svc, _ := newTestService(t, ServiceOptions{})
	ctx := context.Background()
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Record(ctx, RecordRequest{Bank: "agents", Player: "ada", Percentage: 80, Mastery: "Proficient", CompletedAt: at}))
	require.NoError(t, svc.Record(ctx, RecordRequest{Bank: "agents", Player: "ada", Percentage: 40, Mastery: "Needs Study", CompletedAt: at.Add(time.Minute)}))
	require.NoError(t, svc.Record(ctx, RecordRequest{Bank: "agents", Player: "linus", Percentage: 90, Mastery: "Advanced", CompletedAt: at}))
	require.NoError(t, svc.Record(ctx, RecordRequest{Bank: "runner", Player: "grace", Percentage: 100, Mastery: "Master", CompletedAt: at}))

	top, err := svc.Top(ctx, "agents", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "linus", top[0].Player)
	assert.Equal(t, 90.0, top[0].BestPercentage)

	assert.Equal(t, 2, top[1].Rank)
	assert.Equal(t, "ada", top[1].Player)
	assert.Equal(t, 80.0, top[1].BestPercentage)
	assert.Equal(t, 2, top[1].Attempts)
	assert.Equal(t, 40.0, top[1].LastPercentage)
	assert.Equal(t, "Needs Study", top[1].LastMastery)
	assert.True(t, at.Add(time.Minute).Equal(top[1].UpdatedAt))
}

func TestTopRespectsLimit(t *testing.T) {
	svc, _ := newTestService(t, ServiceOptions{TopN: 2})
	ctx := context.Background()
	for i, p := range []string{"a", "b", "c"} {
		require.NoError(t, svc.Record(ctx, RecordRequest{Bank: "tracing", Player: p, Percentage: float64(50 + i*10)}))
	}

	top, err := svc.Top(ctx, "tracing", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "c", top[0].Player)

	top, err = svc.Top(ctx, "tracing", 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestRecordRequiresIdentity(t *testing.T) {
	svc, _ := newTestService(t, ServiceOptions{})
	assert.Error(t, svc.Record(context.Background(), RecordRequest{Bank: "agents"}))
}

func TestRecordAppliesTTL(t *testing.T) {
	svc, mr := newTestService(t, ServiceOptions{EntryTTL: time.Hour, RedisKeyPrefix: "quiz:lb"})
	require.NoError(t, svc.Record(context.Background(), RecordRequest{Bank: "models", Player: "ada", Percentage: 70}))

	assert.Equal(t, time.Hour, mr.TTL("quiz:lb:models"))
	assert.Equal(t, time.Hour, mr.TTL("quiz:lb:models:meta:ada"))
}
