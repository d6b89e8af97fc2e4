package transfer

import (
	"time"

	"github.com/contentpassport/pimtrack/internal/models"
)

type EngagementInput struct {
	Views      int64      `json:"views"`
	Likes      int64      `json:"likes"`
	Shares     int64      `json:"shares"`
	Comments   int64      `json:"comments"`
	Saves      int64      `json:"saves"`
	SnapshotAt *time.Time `json:"snapshot_at,omitempty"`
}

type TrackPostRequest struct {
	Platform       string           `json:"platform"`
	PlatformPostID string           `json:"platform_post_id"`
	AuthorID       string           `json:"author_id"`
	AuthorHandle   string           `json:"author_handle"`
	Content        string           `json:"content"`
	MediaURLs      []string         `json:"media_urls"`
	PerceptualHash string           `json:"perceptual_hash"`
	PostedAt       *time.Time       `json:"posted_at,omitempty"`
	Engagement     *EngagementInput `json:"engagement,omitempty"`
	PassportID     int64            `json:"passport_id,omitempty"`
	MatchType      string           `json:"match_type,omitempty"`
	Distance       float64          `json:"distance,omitempty"`
	HasCredit      bool             `json:"has_credit,omitempty"`
	IsAuthorized   bool             `json:"is_authorized,omitempty"`
}

type UpdateEngagementRequest struct {
	Engagement EngagementInput `json:"engagement"`
}

type PostStatus struct {
	Post          *models.TrackedPost        `json:"post"`
	Latest        *models.EngagementSnapshot `json:"latest_engagement,omitempty"`
	SnapshotCount int                        `json:"snapshot_count"`
}

type EngagementTotals struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Shares   int64 `json:"shares"`
	Comments int64 `json:"comments"`
	Saves    int64 `json:"saves"`
}

type PlatformStats struct {
	Posts      int              `json:"posts"`
	Engagement EngagementTotals `json:"engagement"`
}

type TrackingStats struct {
	PassportID      int64                    `json:"passport_id"`
	TotalPosts      int                      `json:"total_posts"`
	TotalEngagement EngagementTotals         `json:"total_engagement"`
	ByPlatform      map[string]PlatformStats `json:"by_platform"`
}
