package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/transfer"
)

// In-memory repository fakes shared by the service tests.

type fakePassportRepo struct {
	passports map[int64]*models.Passport
}

func newFakePassportRepo(passports ...*models.Passport) *fakePassportRepo {
	r := &fakePassportRepo{passports: make(map[int64]*models.Passport)}
	for _, p := range passports {
		r.passports[p.ID] = p
	}
	return r
}

func (r *fakePassportRepo) GetByID(ctx context.Context, id int64) (*models.Passport, bool, error) {
	p, ok := r.passports[id]
	return p, ok, nil
}

func (r *fakePassportRepo) ListActiveSince(ctx context.Context, since time.Time) ([]int64, error) {
	var ids []int64
	for id := range r.passports {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeTrackedPostRepo struct {
	nextID int64
	byID   map[int64]*models.TrackedPost
	byKey  map[string]int64
}

func newFakeTrackedPostRepo() *fakeTrackedPostRepo {
	return &fakeTrackedPostRepo{
		nextID: 1,
		byID:   make(map[int64]*models.TrackedPost),
		byKey:  make(map[string]int64),
	}
}

func (r *fakeTrackedPostRepo) Upsert(ctx context.Context, post *models.TrackedPost) (int64, error) {
	key := post.Platform + "/" + post.PlatformPostID
	id, ok := r.byKey[key]
	if !ok {
		id = r.nextID
		r.nextID++
		r.byKey[key] = id
		post.FirstTrackedAt = time.Now()
	} else {
		post.FirstTrackedAt = r.byID[id].FirstTrackedAt
	}
	stored := *post
	stored.ID = id
	stored.UpdatedAt = time.Now()
	r.byID[id] = &stored
	return id, nil
}

func (r *fakeTrackedPostRepo) GetByID(ctx context.Context, id int64) (*models.TrackedPost, error) {
	post, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *fakeTrackedPostRepo) GetByPlatformPostID(ctx context.Context, platform, platformPostID string) (*models.TrackedPost, error) {
	id, ok := r.byKey[platform+"/"+platformPostID]
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

type fakeEngagementRepo struct {
	nextID    int64
	snapshots []*models.EngagementSnapshot
}

func newFakeEngagementRepo() *fakeEngagementRepo {
	return &fakeEngagementRepo{nextID: 1}
}

func (r *fakeEngagementRepo) Append(ctx context.Context, snapshot *models.EngagementSnapshot) (int64, error) {
	id := r.nextID
	r.nextID++
	stored := *snapshot
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.snapshots = append(r.snapshots, &stored)
	return id, nil
}

func (r *fakeEngagementRepo) GetLatestByPostID(ctx context.Context, trackedPostID int64) (*models.EngagementSnapshot, bool, error) {
	var latest *models.EngagementSnapshot
	for _, s := range r.snapshots {
		if s.TrackedPostID != trackedPostID {
			continue
		}
		if latest == nil || s.SnapshotAt.After(latest.SnapshotAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, false, nil
	}
	copied := *latest
	return &copied, true, nil
}

func (r *fakeEngagementRepo) CountByPostID(ctx context.Context, trackedPostID int64) (int, error) {
	count := 0
	for _, s := range r.snapshots {
		if s.TrackedPostID == trackedPostID {
			count++
		}
	}
	return count, nil
}

type fakeMatchRepo struct {
	nextID     int64
	matches    map[[2]int64]*models.Match
	posts      *fakeTrackedPostRepo
	engagement *fakeEngagementRepo
}

func newFakeMatchRepo(posts *fakeTrackedPostRepo, engagement *fakeEngagementRepo) *fakeMatchRepo {
	return &fakeMatchRepo{
		nextID:     1,
		matches:    make(map[[2]int64]*models.Match),
		posts:      posts,
		engagement: engagement,
	}
}

func (r *fakeMatchRepo) Upsert(ctx context.Context, match *models.Match) (int64, error) {
	key := [2]int64{match.TrackedPostID, match.PassportID}
	existing, ok := r.matches[key]
	stored := *match
	if ok {
		stored.ID = existing.ID
		stored.MatchedAt = existing.MatchedAt
	} else {
		stored.ID = r.nextID
		r.nextID++
		stored.MatchedAt = time.Now()
	}
	r.matches[key] = &stored
	return stored.ID, nil
}

func (r *fakeMatchRepo) ListByPassportID(ctx context.Context, passportID int64) ([]*models.Match, error) {
	var result []*models.Match
	for _, m := range r.matches {
		if m.PassportID == passportID {
			copied := *m
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeMatchRepo) ListEngagementByPassportID(ctx context.Context, passportID int64) ([]*models.MatchedEngagement, error) {
	var result []*models.MatchedEngagement
	for _, m := range r.matches {
		if m.PassportID != passportID {
			continue
		}
		post, err := r.posts.GetByID(ctx, m.TrackedPostID)
		if err != nil || post == nil {
			continue
		}
		me := &models.MatchedEngagement{
			TrackedPostID: post.ID,
			Platform:      post.Platform,
		}
		if latest, ok, _ := r.engagement.GetLatestByPostID(ctx, post.ID); ok {
			me.Views = latest.Views
			me.Likes = latest.Likes
			me.Shares = latest.Shares
			me.Comments = latest.Comments
			me.Saves = latest.Saves
		}
		result = append(result, me)
	}
	return result, nil
}

type fakePIMRepo struct {
	nextID int64
	rows   map[[2]int64]map[string]*models.PIMCalculation
	board  []*models.LeaderboardRow
}

func newFakePIMRepo() *fakePIMRepo {
	return &fakePIMRepo{
		nextID: 1,
		rows:   make(map[[2]int64]map[string]*models.PIMCalculation),
	}
}

func (r *fakePIMRepo) Upsert(ctx context.Context, calc *models.PIMCalculation) (int64, error) {
	key := [2]int64{calc.PassportID, int64(calc.Epoch)}
	if r.rows[key] == nil {
		r.rows[key] = make(map[string]*models.PIMCalculation)
	}
	stored := *calc
	if existing, ok := r.rows[key][calc.Platform]; ok {
		stored.ID = existing.ID
	} else {
		stored.ID = r.nextID
		r.nextID++
	}
	stored.CalculatedAt = time.Now()
	r.rows[key][calc.Platform] = &stored
	return stored.ID, nil
}

func (r *fakePIMRepo) ListByPassportEpoch(ctx context.Context, passportID int64, epoch int) ([]*models.PIMCalculation, error) {
	var result []*models.PIMCalculation
	for _, c := range r.rows[[2]int64{passportID, int64(epoch)}] {
		copied := *c
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakePIMRepo) ListByPassport(ctx context.Context, passportID int64) ([]*models.PIMCalculation, error) {
	var result []*models.PIMCalculation
	for key, platforms := range r.rows {
		if key[0] != passportID {
			continue
		}
		for _, c := range platforms {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakePIMRepo) LatestEpoch(ctx context.Context, passportID int64) (int, bool, error) {
	latest := 0
	found := false
	for key := range r.rows {
		if key[0] == passportID && int(key[1]) > latest {
			latest = int(key[1])
			found = true
		}
	}
	return latest, found, nil
}

func (r *fakePIMRepo) ListLeaderboardRows(ctx context.Context, epoch int) ([]*models.LeaderboardRow, error) {
	return r.board, nil
}

type fakeAlertRepo struct {
	nextID int64
	alerts []*models.Alert
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{nextID: 1}
}

func (r *fakeAlertRepo) Create(ctx context.Context, alert *models.Alert) (int64, error) {
	stored := *alert
	stored.ID = r.nextID
	r.nextID++
	stored.CreatedAt = time.Now()
	r.alerts = append(r.alerts, &stored)
	return stored.ID, nil
}

func (r *fakeAlertRepo) ListByUser(ctx context.Context, userID sql.NullInt64, filters transfer.AlertFilters) ([]*models.Alert, error) {
	var result []*models.Alert
	for _, a := range r.alerts {
		if a.UserID != userID {
			continue
		}
		if filters.AlertType != "" && a.AlertType != filters.AlertType {
			continue
		}
		if filters.UnreadOnly && a.IsRead {
			continue
		}
		copied := *a
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeAlertRepo) MarkRead(ctx context.Context, id int64, userID sql.NullInt64) (bool, error) {
	for _, a := range r.alerts {
		if a.ID == id && a.UserID == userID {
			a.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAlertRepo) MarkAllRead(ctx context.Context, userID sql.NullInt64) error {
	for _, a := range r.alerts {
		if a.UserID == userID {
			a.IsRead = true
		}
	}
	return nil
}

func (r *fakeAlertRepo) UnreadCount(ctx context.Context, userID sql.NullInt64) (int, error) {
	count := 0
	for _, a := range r.alerts {
		if a.UserID == userID && !a.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeAlertRepo) ExistsViralForPost(ctx context.Context, trackedPostID, passportID int64) (bool, error) {
	for _, a := range r.alerts {
		if a.AlertType != models.AlertTypeViral {
			continue
		}
		if !a.PassportID.Valid || a.PassportID.Int64 != passportID {
			continue
		}
		var payload viralPayload
		if err := json.Unmarshal(a.Data, &payload); err != nil {
			continue
		}
		if payload.TrackedPostID == trackedPostID {
			return true, nil
		}
	}
	return false, nil
}

type fakePreferencesRepo struct {
	prefs map[int64]*models.NotificationPreferences
}

func newFakePreferencesRepo() *fakePreferencesRepo {
	return &fakePreferencesRepo{prefs: make(map[int64]*models.NotificationPreferences)}
}

func (r *fakePreferencesRepo) GetByUserID(ctx context.Context, userID int64) (*models.NotificationPreferences, bool, error) {
	p, ok := r.prefs[userID]
	if !ok {
		return nil, false, nil
	}
	copied := *p
	return &copied, true, nil
}

func (r *fakePreferencesRepo) Upsert(ctx context.Context, prefs *models.NotificationPreferences) error {
	stored := *prefs
	stored.UpdatedAt = time.Now()
	r.prefs[prefs.UserID] = &stored
	return nil
}
