package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingFixture struct {
	posts      *fakeTrackedPostRepo
	engagement *fakeEngagementRepo
	matches    *fakeMatchRepo
	passports  *fakePassportRepo
	alerts     *fakeAlertRepo
	svc        TrackingService
}

func newTrackingFixture(passports ...*models.Passport) *trackingFixture {
	posts := newFakeTrackedPostRepo()
	engagement := newFakeEngagementRepo()
	matches := newFakeMatchRepo(posts, engagement)
	passportRepo := newFakePassportRepo(passports...)
	alerts := newFakeAlertRepo()
	alertService := NewAlertService(alerts, passportRepo, newFakePreferencesRepo())
	return &trackingFixture{
		posts:      posts,
		engagement: engagement,
		matches:    matches,
		passports:  passportRepo,
		alerts:     alerts,
		svc:        NewTrackingService(posts, engagement, matches, passportRepo, alertService),
	}
}

func TestTrackPost_Validation(t *testing.T) {
	f := newTrackingFixture()
	ctx := context.Background()

	testCases := []struct {
		name string
		req  transfer.TrackPostRequest
	}{
		{
			name: "unknown platform",
			req:  transfer.TrackPostRequest{Platform: "myspace", PlatformPostID: "1"},
		},
		{
			name: "missing post id",
			req:  transfer.TrackPostRequest{Platform: models.PlatformTwitter},
		},
		{
			name: "bad media url",
			req: transfer.TrackPostRequest{
				Platform:       models.PlatformTwitter,
				PlatformPostID: "1",
				MediaURLs:      []string{"not a url"},
			},
		},
		{
			name: "non-hex perceptual hash",
			req: transfer.TrackPostRequest{
				Platform:       models.PlatformTwitter,
				PlatformPostID: "1",
				PerceptualHash: "zzzz",
			},
		},
		{
			name: "negative engagement",
			req: transfer.TrackPostRequest{
				Platform:       models.PlatformTwitter,
				PlatformPostID: "1",
				Engagement:     &transfer.EngagementInput{Likes: -1},
			},
		},
		{
			name: "bad match type",
			req: transfer.TrackPostRequest{
				Platform:       models.PlatformTwitter,
				PlatformPostID: "1",
				MatchType:      "fuzzy",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.TrackPost(ctx, 0, &tc.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestTrackPost_UpsertLastWriterWins(t *testing.T) {
	f := newTrackingFixture()
	ctx := context.Background()

	first, err := f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformTwitter,
		PlatformPostID: "abc",
		Content:        "first version",
	})
	require.NoError(t, err)

	second, err := f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformTwitter,
		PlatformPostID: "abc",
		Content:        "second version",
		AuthorHandle:   "@poster",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "second version", second.Content)
	assert.Equal(t, "@poster", second.AuthorHandle)
	assert.Len(t, f.posts.byID, 1)
}

func TestTrackPost_ForbiddenForOwnedPassport(t *testing.T) {
	f := newTrackingFixture(&models.Passport{
		ID:      7,
		OwnerID: sql.NullInt64{Int64: 42, Valid: true},
	})

	_, err := f.svc.TrackPost(context.Background(), 99, &transfer.TrackPostRequest{
		Platform:       models.PlatformTwitter,
		PlatformPostID: "abc",
		PassportID:     7,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	// The check runs before any write.
	assert.Empty(t, f.posts.byID)
}

func TestTrackPost_MatchDefaultsToExact(t *testing.T) {
	f := newTrackingFixture(&models.Passport{ID: 7})
	ctx := context.Background()

	post, err := f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformFarcaster,
		PlatformPostID: "cast-1",
		PassportID:     7,
		Distance:       0.12,
	})
	require.NoError(t, err)

	matches, err := f.matches.ListByPassportID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.MatchTypeExact, matches[0].MatchType)
	assert.Equal(t, post.ID, matches[0].TrackedPostID)

	// A resubmission does not create a second match row.
	_, err = f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformFarcaster,
		PlatformPostID: "cast-1",
		PassportID:     7,
		MatchType:      models.MatchTypeVariant,
	})
	require.NoError(t, err)

	matches, err = f.matches.ListByPassportID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.MatchTypeVariant, matches[0].MatchType)
}

func TestUpdateEngagement_AppendsOnly(t *testing.T) {
	f := newTrackingFixture()
	ctx := context.Background()

	post, err := f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformReddit,
		PlatformPostID: "r1",
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err := f.svc.UpdateEngagement(ctx, post.ID, &transfer.EngagementInput{Likes: int64(10 * (i + 1))})
		require.NoError(t, err)
	}

	count, err := f.engagement.CountByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUpdateEngagement_UnknownPost(t *testing.T) {
	f := newTrackingFixture()

	err := f.svc.UpdateEngagement(context.Background(), 123, &transfer.EngagementInput{Likes: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPostStatus_ByPlatformKey(t *testing.T) {
	f := newTrackingFixture()
	ctx := context.Background()

	post, err := f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformTwitter,
		PlatformPostID: "t1",
	})
	require.NoError(t, err)

	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, f.svc.UpdateEngagement(ctx, post.ID, &transfer.EngagementInput{Likes: 500, SnapshotAt: &t2}))
	require.NoError(t, f.svc.UpdateEngagement(ctx, post.ID, &transfer.EngagementInput{Likes: 100, SnapshotAt: &t1}))

	status, err := f.svc.GetPostStatus(ctx, models.PlatformTwitter, "t1")
	require.NoError(t, err)

	assert.Equal(t, post.ID, status.Post.ID)
	assert.Equal(t, 2, status.SnapshotCount)
	require.NotNil(t, status.Latest)
	assert.Equal(t, int64(500), status.Latest.Likes)
}

func TestGetPostStatus_NoSnapshots(t *testing.T) {
	f := newTrackingFixture()
	ctx := context.Background()

	_, err := f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformReddit,
		PlatformPostID: "r1",
	})
	require.NoError(t, err)

	status, err := f.svc.GetPostStatus(ctx, models.PlatformReddit, "r1")
	require.NoError(t, err)
	assert.Nil(t, status.Latest)
	assert.Equal(t, 0, status.SnapshotCount)
}

func TestGetPostStatus_UnknownPost(t *testing.T) {
	f := newTrackingFixture()

	_, err := f.svc.GetPostStatus(context.Background(), models.PlatformTwitter, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetPostStatus(context.Background(), "myspace", "t1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetTrackingStats_UsesLatestSnapshotByTimestamp(t *testing.T) {
	f := newTrackingFixture(&models.Passport{ID: 7})
	ctx := context.Background()

	post, err := f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformTwitter,
		PlatformPostID: "t1",
		PassportID:     7,
	})
	require.NoError(t, err)

	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	// Insert the newer snapshot first: selection must go by
	// snapshot_at, not insertion order.
	require.NoError(t, f.svc.UpdateEngagement(ctx, post.ID, &transfer.EngagementInput{Likes: 500, SnapshotAt: &t2}))
	require.NoError(t, f.svc.UpdateEngagement(ctx, post.ID, &transfer.EngagementInput{Likes: 100, SnapshotAt: &t1}))

	stats, err := f.svc.GetTrackingStats(ctx, 0, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalPosts)
	assert.Equal(t, int64(500), stats.TotalEngagement.Likes)
	require.Contains(t, stats.ByPlatform, models.PlatformTwitter)
	assert.Equal(t, int64(500), stats.ByPlatform[models.PlatformTwitter].Engagement.Likes)
}

func TestGetTrackingStats_Forbidden(t *testing.T) {
	f := newTrackingFixture(&models.Passport{
		ID:      7,
		OwnerID: sql.NullInt64{Int64: 42, Valid: true},
	})

	_, err := f.svc.GetTrackingStats(context.Background(), 99, 7)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetTrackingStats_MultiPlatformBreakdown(t *testing.T) {
	f := newTrackingFixture(&models.Passport{ID: 7})
	ctx := context.Background()

	_, err := f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformTwitter,
		PlatformPostID: "t1",
		PassportID:     7,
		Engagement:     &transfer.EngagementInput{Likes: 10, Views: 100},
	})
	require.NoError(t, err)

	_, err = f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformTwitter,
		PlatformPostID: "t2",
		PassportID:     7,
		Engagement:     &transfer.EngagementInput{Likes: 5},
	})
	require.NoError(t, err)

	_, err = f.svc.TrackPost(ctx, 0, &transfer.TrackPostRequest{
		Platform:       models.PlatformReddit,
		PlatformPostID: "r1",
		PassportID:     7,
		Engagement:     &transfer.EngagementInput{Comments: 3},
	})
	require.NoError(t, err)

	stats, err := f.svc.GetTrackingStats(ctx, 0, 7)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalPosts)
	assert.Equal(t, int64(15), stats.TotalEngagement.Likes)
	assert.Equal(t, int64(100), stats.TotalEngagement.Views)
	assert.Equal(t, int64(3), stats.TotalEngagement.Comments)
	assert.Equal(t, 2, stats.ByPlatform[models.PlatformTwitter].Posts)
	assert.Equal(t, 1, stats.ByPlatform[models.PlatformReddit].Posts)
}
