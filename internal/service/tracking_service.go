package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/repository"
	"github.com/contentpassport/pimtrack/internal/transfer"
)

const (
	maxContentLength   = 10000
	maxMediaURLs       = 20
	maxMediaURLLength  = 2048
	maxPerceptualHash  = 128
	maxEngagementCount = int64(1_000_000_000_000)
)

type TrackingService interface {
	TrackPost(ctx context.Context, callerID int64, req *transfer.TrackPostRequest) (*models.TrackedPost, error)
	UpdateEngagement(ctx context.Context, trackedPostID int64, engagement *transfer.EngagementInput) error
	GetPostStatus(ctx context.Context, platform, platformPostID string) (*transfer.PostStatus, error)
	GetTrackingStats(ctx context.Context, callerID, passportID int64) (*transfer.TrackingStats, error)
}

type trackingService struct {
	pr repository.TrackedPostRepository
	er repository.EngagementRepository
	mr repository.MatchRepository
	pa repository.PassportRepository
	al AlertService
}

func NewTrackingService(
	pr repository.TrackedPostRepository,
	er repository.EngagementRepository,
	mr repository.MatchRepository,
	pa repository.PassportRepository,
	al AlertService) TrackingService {
	return &trackingService{
		pr: pr,
		er: er,
		mr: mr,
		pa: pa,
		al: al,
	}
}

// TrackPost upserts the post, then appends the snapshot, upserts the
// match and runs the viral check. The steps after the post upsert are
// not transactional: a later failure is logged and returned, but the
// post row stays. Callers own retries; every step is an idempotent
// upsert or an append.
func (s *trackingService) TrackPost(ctx context.Context, callerID int64, req *transfer.TrackPostRequest) (*models.TrackedPost, error) {
	if err := validateTrackPost(req); err != nil {
		return nil, err
	}

	// Ownership is checked before any write.
	var passport *models.Passport
	if req.PassportID != 0 {
		p, exists, err := s.pa.GetByID(ctx, req.PassportID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("passport %d: %w", req.PassportID, ErrNotFound)
		}
		if !p.OwnedBy(callerID) {
			return nil, fmt.Errorf("passport %d: %w", req.PassportID, ErrForbidden)
		}
		passport = p
	}

	postID, err := s.pr.Upsert(ctx, &models.TrackedPost{
		Platform:       req.Platform,
		PlatformPostID: req.PlatformPostID,
		AuthorID:       req.AuthorID,
		AuthorHandle:   req.AuthorHandle,
		Content:        req.Content,
		MediaURLs:      req.MediaURLs,
		PerceptualHash: req.PerceptualHash,
		PostedAt:       req.PostedAt,
	})
	if err != nil {
		return nil, err
	}

	var snapshot *models.EngagementSnapshot
	if req.Engagement != nil {
		snapshot, err = s.appendSnapshot(ctx, postID, req.Engagement)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
	}

	if passport != nil {
		matchType := req.MatchType
		if matchType == "" {
			matchType = models.MatchTypeExact
		}
		_, err = s.mr.Upsert(ctx, &models.Match{
			TrackedPostID: postID,
			PassportID:    passport.ID,
			MatchType:     matchType,
			Distance:      req.Distance,
			HasCredit:     req.HasCredit,
			IsAuthorized:  req.IsAuthorized,
		})
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	// Alerting is best effort and never fails the ingest path.
	if passport != nil && snapshot != nil {
		if err := s.al.CheckViralActivity(ctx, post, passport.ID, snapshot); err != nil {
			slog.Info(err.Error())
		}
	}

	return post, nil
}

func (s *trackingService) UpdateEngagement(ctx context.Context, trackedPostID int64, engagement *transfer.EngagementInput) error {
	if engagement == nil {
		return invalidInput("engagement", "is required")
	}
	if err := validateEngagement(engagement); err != nil {
		return err
	}

	post, err := s.pr.GetByID(ctx, trackedPostID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("tracked post %d: %w", trackedPostID, ErrNotFound)
	}

	_, err = s.appendSnapshot(ctx, trackedPostID, engagement)
	return err
}

// GetPostStatus looks a tracked post up by its platform key and
// returns it with its latest snapshot and the snapshot count.
func (s *trackingService) GetPostStatus(ctx context.Context, platform, platformPostID string) (*transfer.PostStatus, error) {
	if !models.IsValidPlatform(platform) {
		return nil, invalidInput("platform", "must be one of farcaster, twitter, reddit, tiktok, instagram")
	}
	if platformPostID == "" {
		return nil, invalidInput("platform_post_id", "is required")
	}

	post, err := s.pr.GetByPlatformPostID(ctx, platform, platformPostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("tracked post %s/%s: %w", platform, platformPostID, ErrNotFound)
	}

	status := &transfer.PostStatus{Post: post}

	latest, exists, err := s.er.GetLatestByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		status.Latest = latest
	}

	status.SnapshotCount, err = s.er.CountByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	return status, nil
}

// GetTrackingStats sums each matched post's latest snapshot. The
// "current" value always comes from max(snapshot_at), never from the
// snapshot history as a whole.
func (s *trackingService) GetTrackingStats(ctx context.Context, callerID, passportID int64) (*transfer.TrackingStats, error) {
	passport, exists, err := s.pa.GetByID(ctx, passportID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("passport %d: %w", passportID, ErrNotFound)
	}
	if !passport.OwnedBy(callerID) {
		return nil, fmt.Errorf("passport %d: %w", passportID, ErrForbidden)
	}

	rows, err := s.mr.ListEngagementByPassportID(ctx, passportID)
	if err != nil {
		return nil, err
	}

	stats := &transfer.TrackingStats{
		PassportID: passportID,
		ByPlatform: make(map[string]transfer.PlatformStats),
	}
	for _, row := range rows {
		stats.TotalPosts++
		stats.TotalEngagement.Views += row.Views
		stats.TotalEngagement.Likes += row.Likes
		stats.TotalEngagement.Shares += row.Shares
		stats.TotalEngagement.Comments += row.Comments
		stats.TotalEngagement.Saves += row.Saves

		ps := stats.ByPlatform[row.Platform]
		ps.Posts++
		ps.Engagement.Views += row.Views
		ps.Engagement.Likes += row.Likes
		ps.Engagement.Shares += row.Shares
		ps.Engagement.Comments += row.Comments
		ps.Engagement.Saves += row.Saves
		stats.ByPlatform[row.Platform] = ps
	}

	return stats, nil
}

func (s *trackingService) appendSnapshot(ctx context.Context, postID int64, engagement *transfer.EngagementInput) (*models.EngagementSnapshot, error) {
	snapshotAt := time.Now()
	if engagement.SnapshotAt != nil {
		snapshotAt = *engagement.SnapshotAt
	}

	snapshot := &models.EngagementSnapshot{
		TrackedPostID: postID,
		Views:         engagement.Views,
		Likes:         engagement.Likes,
		Shares:        engagement.Shares,
		Comments:      engagement.Comments,
		Saves:         engagement.Saves,
		SnapshotAt:    snapshotAt,
	}

	id, err := s.er.Append(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	snapshot.ID = id

	return snapshot, nil
}

func validateTrackPost(req *transfer.TrackPostRequest) error {
	if !models.IsValidPlatform(req.Platform) {
		return invalidInput("platform", "must be one of farcaster, twitter, reddit, tiktok, instagram")
	}
	if req.PlatformPostID == "" {
		return invalidInput("platform_post_id", "is required")
	}
	if len(req.Content) > maxContentLength {
		return invalidInput("content", "exceeds maximum length")
	}
	if len(req.MediaURLs) > maxMediaURLs {
		return invalidInput("media_urls", "too many entries")
	}
	for _, raw := range req.MediaURLs {
		if len(raw) > maxMediaURLLength {
			return invalidInput("media_urls", "entry exceeds maximum length")
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalidInput("media_urls", "entry is not a valid http(s) URL")
		}
	}
	if req.PerceptualHash != "" {
		if len(req.PerceptualHash) > maxPerceptualHash {
			return invalidInput("perceptual_hash", "exceeds maximum length")
		}
		if _, err := hex.DecodeString(req.PerceptualHash); err != nil {
			return invalidInput("perceptual_hash", "is not a hex string")
		}
	}
	if req.MatchType != "" && !models.IsValidMatchType(req.MatchType) {
		return invalidInput("match_type", "must be one of exact, variant, derivative")
	}
	if req.Engagement != nil {
		if err := validateEngagement(req.Engagement); err != nil {
			return err
		}
	}
	return nil
}

func validateEngagement(e *transfer.EngagementInput) error {
	counts := map[string]int64{
		"views":    e.Views,
		"likes":    e.Likes,
		"shares":   e.Shares,
		"comments": e.Comments,
		"saves":    e.Saves,
	}
	for field, v := range counts {
		if v < 0 {
			return invalidInput("engagement."+field, "must be non-negative")
		}
		if v > maxEngagementCount {
			return invalidInput("engagement."+field, "exceeds maximum")
		}
	}
	return nil
}
