package results

import (
	"context"
	"database/sql"
	"embed"
		"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // driver: sqlite
)

//go:embed migrations/*.sql
var sqliteMigrations embed.FS

// SQLiteStore keeps local quiz history in a SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenSQLite opens (or creates) the history database at path and applies migrations.
// ":memory:" gives a throwaway store.
func OpenSQLite(ctx context.Context, path string, logger zerolog.Logger) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger.With().Str("component", "results_sqlite").Logger()}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(sqliteMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("history migrations: %w", err)
	}
	applied, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply history migrations: %w", err)
	}
	for _, r := range applied {
		s.logger.Debug().Int64("version", r.Source.Version).Dur("took", r.Duration).Msg("history migration applied")
	}
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts a record.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	cats, diffs, recs, err := MarshalDetails(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO quiz_results (
  id, bank, title, player, questions, correct, points_earned, points_possible,
  percentage, mastery, elapsed_ms, categories_json, difficulties_json, recommendations_json, completed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Bank, rec.Title, rec.Player, rec.Questions, rec.Correct,
		rec.PointsEarned, rec.PointsPossible, rec.Percentage, rec.Mastery, rec.Elapsed.Milliseconds(),
		string(cats), string(diffs), string(recs), rec.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Recent lists a player's newest results. An empty player lists everyone's.
func (s *SQLiteStore) Recent(ctx context.Context, player string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, bank, title, player, questions, correct, points_earned, points_possible,
       percentage, mastery, elapsed_ms, categories_json, difficulties_json, recommendations_json, completed_at
FROM quiz_results
WHERE (? = '' OR player = ?)
ORDER BY completed_at DESC
LIMIT ?`, player, player, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec                      Record
			id                       string
			elapsedMs, completedAtMs int64
			cats, diffs, recs        string
		)
		if err := rows.Scan(&id, &rec.Bank, &rec.Title, &rec.Player, &rec.Questions, &rec.Correct,
			&rec.PointsEarned, &rec.PointsPossible, &rec.Percentage, &rec.Mastery, &elapsedMs,
			&cats, &diffs, &recs, &completedAtMs); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scan result id: %w", err)
		}
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		rec.CompletedAt = time.UnixMilli(completedAtMs).UTC()
		if err := UnmarshalDetails(&rec, []byte(cats), []byte(diffs), []byte(recs)); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
