package transfer

import (
	"time"

	"github.com/contentpassport/pimtrack/internal/models"
)

type PlatformScore struct {
	Platform        string  `json:"platform"`
	RawScore        float64 `json:"raw_score"`
	NormalizedScore float64 `json:"normalized_score"`
	PostCount       int     `json:"post_count"`
}

type PIMResult struct {
	PassportID int64           `json:"passport_id"`
	Epoch      int             `json:"epoch"`
	TotalPIM   float64         `json:"total_pim"`
	ByPlatform []PlatformScore `json:"by_platform"`
}

type EpochScore struct {
	Epoch        int             `json:"epoch"`
	TotalPIM     float64         `json:"total_pim"`
	ByPlatform   []PlatformScore `json:"by_platform"`
	CalculatedAt time.Time       `json:"calculated_at"`
}

type PIMOverview struct {
	PassportID  int64        `json:"passport_id"`
	CurrentPIM  float64      `json:"current_pim"`
	LatestEpoch int          `json:"latest_epoch"`
	History     []EpochScore `json:"history"`
}

type LeaderboardEntry struct {
	Rank     int                    `json:"rank"`
	Passport models.PassportSummary `json:"passport"`
	TotalPIM float64                `json:"total_pim"`
}

type Leaderboard struct {
	Epoch       int                `json:"epoch"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Total       int                `json:"total"`
}
