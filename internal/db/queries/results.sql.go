package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertQuizResult = `-- name: InsertQuizResult :exec
INSERT INTO quiz_results (
  id, bank, title, player, questions, correct, points_earned, points_possible,
  percentage, mastery, elapsed_ms, categories, difficulties, recommendations, completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

type InsertQuizResultParams struct {
	ID              pgtype.UUID        `json:"id"`
	Bank            string             `json:"bank"`
	Title           string             `json:"title"`
	Player          string             `json:"player"`
	Questions       int32              `json:"questions"`
	Correct         int32              `json:"correct"`
	PointsEarned    int32              `json:"points_earned"`
	PointsPossible  int32              `json:"points_possible"`
	Percentage      float64            `json:"percentage"`
	Mastery         string             `json:"mastery"`
	ElapsedMs       int64              `json:"elapsed_ms"`
	Categories      []byte             `json:"categories"`
	Difficulties    []byte             `json:"difficulties"`
	Recommendations []byte             `json:"recommendations"`
	CompletedAt     pgtype.Timestamptz `json:"completed_at"`
}

func (q *Queries) InsertQuizResult(ctx context.Context, arg InsertQuizResultParams) error {
	_, err := q.db.Exec(ctx, insertQuizResult,
		arg.ID,
		arg.Bank,
		arg.Title,
		arg.Player,
		arg.Questions,
		arg.Correct,
		arg.PointsEarned,
		arg.PointsPossible,
		arg.Percentage,
		arg.Mastery,
		arg.ElapsedMs,
		arg.Categories,
		arg.Difficulties,
		arg.Recommendations,
		arg.CompletedAt,
	)
	return err
}

const listResultsByPlayer = `-- name: ListResultsByPlayer :many
SELECT id, bank, title, player, questions, correct, points_earned, points_possible,
       percentage, mastery, elapsed_ms, categories, difficulties, recommendations, completed_at
FROM quiz_results
WHERE player = $1
ORDER BY completed_at DESC
LIMIT $2
`

type ListResultsByPlayerParams struct {
	Player string `json:"player"`
	Limit  int32  `json:"limit"`
}

func (q *Queries) ListResultsByPlayer(ctx context.Context, arg ListResultsByPlayerParams) ([]QuizResult, error) {
	rows, err := q.db.Query(ctx, listResultsByPlayer, arg.Player, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []QuizResult
	for rows.Next() {
		var i QuizResult
		if err := rows.Scan(
			&i.ID,
			&i.Bank,
			&i.Title,
			&i.Player,
			&i.Questions,
			&i.Correct,
			&i.PointsEarned,
			&i.PointsPossible,
			&i.Percentage,
			&i.Mastery,
			&i.ElapsedMs,
			&i.Categories,
			&i.Difficulties,
			&i.Recommendations,
			&i.CompletedAt,
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
