package models

import "time"

type TrackedPost struct {
	ID             int64      `db:"id" json:"id"`
	Platform       string     `db:"platform" json:"platform"`
	PlatformPostID string     `db:"platform_post_id" json:"platform_post_id"`
	AuthorID       string     `db:"author_id" json:"author_id"`
	AuthorHandle   string     `db:"author_handle" json:"author_handle"`
	Content        string     `db:"content" json:"content"`
	MediaURLs      []string   `db:"media_urls" json:"media_urls"`
	PerceptualHash string     `db:"perceptual_hash" json:"perceptual_hash,omitempty"`
	PostedAt       *time.Time `db:"posted_at" json:"posted_at,omitempty"`
	FirstTrackedAt time.Time  `db:"first_tracked_at" json:"first_tracked_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type EngagementSnapshot struct {
	ID            int64     `db:"id" json:"id"`
	TrackedPostID int64     `db:"tracked_post_id" json:"tracked_post_id"`
	Views         int64     `db:"views" json:"views"`
	Likes         int64     `db:"likes" json:"likes"`
	Shares        int64     `db:"shares" json:"shares"`
	Comments      int64     `db:"comments" json:"comments"`
	Saves         int64     `db:"saves" json:"saves"`
	SnapshotAt    time.Time `db:"snapshot_at" json:"snapshot_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Match struct {
	ID            int64     `db:"id" json:"id"`
	TrackedPostID int64     `db:"tracked_post_id" json:"tracked_post_id"`
	PassportID    int64     `db:"passport_id" json:"passport_id"`
	MatchType     string    `db:"match_type" json:"match_type"`
	Distance      float64   `db:"distance" json:"distance"`
	HasCredit     bool      `db:"has_credit" json:"has_credit"`
	IsAuthorized  bool      `db:"is_authorized" json:"is_authorized"`
	MatchedAt     time.Time `db:"matched_at" json:"matched_at"`
}

// MatchedEngagement is one matched post joined to its latest snapshot,
// the row shape the scoring and stats queries work from.
type MatchedEngagement struct {
	TrackedPostID int64  `db:"tracked_post_id"`
	Platform      string `db:"platform"`
	Views         int64  `db:"views"`
	Likes         int64  `db:"likes"`
	Shares        int64  `db:"shares"`
	Comments      int64  `db:"comments"`
	Saves         int64  `db:"saves"`
}

const (
	PlatformFarcaster = "farcaster"
	PlatformTwitter   = "twitter"
	PlatformReddit    = "reddit"
	PlatformTiktok    = "tiktok"
	PlatformInstagram = "instagram"
)

const (
	MatchTypeExact      = "exact"
	MatchTypeVariant    = "variant"
	MatchTypeDerivative = "derivative"
)

var Platforms = map[string]struct{}{
	PlatformFarcaster: {},
	PlatformTwitter:   {},
	PlatformReddit:    {},
	PlatformTiktok:    {},
	PlatformInstagram: {},
}

func IsValidPlatform(platform string) bool {
	_, ok := Platforms[platform]
	return ok
}

func IsValidMatchType(matchType string) bool {
	switch matchType {
	case MatchTypeExact, MatchTypeVariant, MatchTypeDerivative:
		return true
	}
	return false
}
