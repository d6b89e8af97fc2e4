package models

import "time"

type PIMCalculation struct {
	ID              int64     `db:"id" json:"id"`
	PassportID      int64     `db:"passport_id" json:"passport_id"`
	Epoch           int       `db:"epoch" json:"epoch"`
	Platform        string    `db:"platform" json:"platform"`
	RawScore        float64   `db:"raw_score" json:"raw_score"`
	NormalizedScore float64   `db:"normalized_score" json:"normalized_score"`
	PostCount       int       `db:"post_count" json:"post_count"`
	CalculatedAt    time.Time `db:"calculated_at" json:"calculated_at"`
}

// LeaderboardRow is a PIM calculation joined to its passport's summary
// fields, as read by the leaderboard query.
type LeaderboardRow struct {
	PassportID      int64   `db:"passport_id"`
	AcpID           string  `db:"acp_id"`
	Prompt          string  `db:"prompt"`
	PreviewURL      string  `db:"preview_url"`
	Platform        string  `db:"platform"`
	NormalizedScore float64 `db:"normalized_score"`
}
