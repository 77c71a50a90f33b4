package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertLeaderboardSnapshot = `-- name: InsertLeaderboardSnapshot :one
INSERT INTO leaderboard_snapshots (bank, generated_at, entries, source_hash)
VALUES ($1, $2, $3, $4)
RETURNING id, bank, generated_at, entries, source_hash
`

type InsertLeaderboardSnapshotParams struct {
	Bank        string             `json:"bank"`
	GeneratedAt pgtype.Timestamptz `json:"generated_at"`
	Entries     []byte             `json:"entries"`
	SourceHash  string             `json:"source_hash"`
}

func (q *Queries) InsertLeaderboardSnapshot(ctx context.Context, arg InsertLeaderboardSnapshotParams) (LeaderboardSnapshot, error) {
	row := q.db.QueryRow(ctx, insertLeaderboardSnapshot,
		arg.Bank,
		arg.GeneratedAt,
		arg.Entries,
		arg.SourceHash,
	)
	var i LeaderboardSnapshot
	err := row.Scan(
		&i.ID,
		&i.Bank,
		&i.GeneratedAt,
		&i.Entries,
		&i.SourceHash,
	)
	return i, err
}

const listRecentSnapshots = `-- name: ListRecentSnapshots :many
SELECT id, bank, generated_at, entries, source_hash
FROM leaderboard_snapshots
WHERE bank = $1
ORDER BY generated_at DESC
LIMIT $2
`

type ListRecentSnapshotsParams struct {
	Bank  string `json:"bank"`
	Limit int32  `json:"limit"`
}

func (q *Queries) ListRecentSnapshots(ctx context.Context, arg ListRecentSnapshotsParams) ([]LeaderboardSnapshot, error) {
	rows, err := q.db.Query(ctx, listRecentSnapshots, arg.Bank, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LeaderboardSnapshot
	for rows.Next() {
		var i LeaderboardSnapshot
		if err := rows.Scan(
			&i.ID,
			&i.Bank,
			&i.GeneratedAt,
			&i.Entries,
			&i.SourceHash,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
