package queries

import "github.com/jackc/pgx/v5/pgtype"

type QuizResult struct {
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

type LeaderboardSnapshot struct {
	ID          int64              `json:"id"`
	Bank        string             `json:"bank"`
	GeneratedAt pgtype.Timestamptz `json:"generated_at"`
	Entries     []byte             `json:"entries"`
	SourceHash  string             `json:"source_hash"`
}
