package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	config "github.com/contentpassport/pimtrack/configs"
	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/repository"
	"github.com/contentpassport/pimtrack/internal/transfer"
)

type AlertService interface {
	CheckViralActivity(ctx context.Context, post *models.TrackedPost, passportID int64, snapshot *models.EngagementSnapshot) error
	CreateAlert(ctx context.Context, callerID int64, req *transfer.CreateAlertRequest) (*models.Alert, error)
	GetAlerts(ctx context.Context, callerID int64, filters transfer.AlertFilters) ([]*models.Alert, error)
	MarkRead(ctx context.Context, callerID, alertID int64) error
	MarkAllRead(ctx context.Context, callerID int64) error
	UnreadCount(ctx context.Context, callerID int64) (int, error)
}

type alertService struct {
	ar repository.AlertRepository
	pa repository.PassportRepository
	nr repository.PreferencesRepository
}

func NewAlertService(
	ar repository.AlertRepository,
	pa repository.PassportRepository,
	nr repository.PreferencesRepository) AlertService {
	return &alertService{
		ar: ar,
		pa: pa,
		nr: nr,
	}
}

type viralPayload struct {
	TrackedPostID int64  `json:"tracked_post_id"`
	Platform      string `json:"platform"`
	AuthorHandle  string `json:"author_handle,omitempty"`
	Views         int64  `json:"views"`
	Likes         int64  `json:"likes"`
	Shares        int64  `json:"shares"`
}

// CheckViralActivity evaluates one freshly submitted snapshot against
// absolute cumulative thresholds. An owner's viral_threshold preference
// replaces the default likes threshold and rescales the share and view
// thresholds at the default 100:50:1000 ratios, so raising it quiets
// every counter. A given (post, passport) pair fires at most once;
// later qualifying snapshots for the same post are suppressed.
func (s *alertService) CheckViralActivity(ctx context.Context, post *models.TrackedPost, passportID int64, snapshot *models.EngagementSnapshot) error {
	passport, exists, err := s.pa.GetByID(ctx, passportID)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	likesThreshold := int64(config.ViralLikesThreshold)
	sharesThreshold := int64(config.ViralSharesThreshold)
	viewsThreshold := int64(config.ViralViewsThreshold)
	var prefs *models.NotificationPreferences
	if passport.OwnerID.Valid {
		prefs = s.preferencesFor(ctx, passport.OwnerID.Int64)
		if !prefs.ViralEnabled {
			return nil
		}
		if prefs.ViralThreshold > 0 {
			likesThreshold = prefs.ViralThreshold
			sharesThreshold = prefs.ViralThreshold * config.ViralSharesThreshold / config.ViralLikesThreshold
			viewsThreshold = prefs.ViralThreshold * config.ViralViewsThreshold / config.ViralLikesThreshold
		}
	}

	if snapshot.Likes < likesThreshold &&
		snapshot.Shares < sharesThreshold &&
		snapshot.Views < viewsThreshold {
		return nil
	}

	fired, err := s.ar.ExistsViralForPost(ctx, post.ID, passportID)
	if err != nil {
		return err
	}
	if fired {
		return nil
	}

	data, err := json.Marshal(viralPayload{
		TrackedPostID: post.ID,
		Platform:      post.Platform,
		AuthorHandle:  post.AuthorHandle,
		Views:         snapshot.Views,
		Likes:         snapshot.Likes,
		Shares:        snapshot.Shares,
	})
	if err != nil {
		return err
	}

	channels := []string{models.ChannelInApp}
	if prefs != nil && len(prefs.Channels) > 0 {
		channels = prefs.Channels
	}

	alert := &models.Alert{
		UserID:     passport.OwnerID,
		PassportID: sql.NullInt64{Int64: passportID, Valid: true},
		AlertType:  models.AlertTypeViral,
		Title:      "Your content is going viral",
		Body:       fmt.Sprintf("A %s post reproducing your content reached %d likes, %d shares and %d views.", post.Platform, snapshot.Likes, snapshot.Shares, snapshot.Views),
		Data:       data,
		Channels:   channels,
	}

	_, err = s.ar.Create(ctx, alert)
	return err
}

func (s *alertService) CreateAlert(ctx context.Context, callerID int64, req *transfer.CreateAlertRequest) (*models.Alert, error) {
	if !models.IsValidAlertType(req.AlertType) {
		return nil, invalidInput("alert_type", "unknown alert type")
	}
	if req.Title == "" {
		return nil, invalidInput("title", "is required")
	}
	if len(req.Data) > models.MaxAlertDataBytes {
		return nil, invalidInput("data", "payload too large")
	}
	if len(req.Data) > 0 && !json.Valid(req.Data) {
		return nil, invalidInput("data", "is not valid JSON")
	}

	var passportID sql.NullInt64
	if req.PassportID != 0 {
		passport, exists, err := s.pa.GetByID(ctx, req.PassportID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("passport %d: %w", req.PassportID, ErrNotFound)
		}
		if !passport.OwnedBy(callerID) {
			return nil, fmt.Errorf("passport %d: %w", req.PassportID, ErrForbidden)
		}
		passportID = sql.NullInt64{Int64: req.PassportID, Valid: true}
	}

	channels := req.Channels
	if len(channels) == 0 {
		channels = []string{models.ChannelInApp}
	}

	alert := &models.Alert{
		UserID:     callerScope(callerID),
		PassportID: passportID,
		AlertType:  req.AlertType,
		Title:      req.Title,
		Body:       req.Body,
		Data:       req.Data,
		Channels:   channels,
	}

	id, err := s.ar.Create(ctx, alert)
	if err != nil {
		return nil, err
	}
	alert.ID = id

	return alert, nil
}

func (s *alertService) GetAlerts(ctx context.Context, callerID int64, filters transfer.AlertFilters) ([]*models.Alert, error) {
	if filters.AlertType != "" && !models.IsValidAlertType(filters.AlertType) {
		return nil, invalidInput("alert_type", "unknown alert type")
	}
	return s.ar.ListByUser(ctx, callerScope(callerID), filters)
}

func (s *alertService) MarkRead(ctx context.Context, callerID, alertID int64) error {
	ok, err := s.ar.MarkRead(ctx, alertID, callerScope(callerID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("alert %d: %w", alertID, ErrNotFound)
	}
	return nil
}

func (s *alertService) MarkAllRead(ctx context.Context, callerID int64) error {
	return s.ar.MarkAllRead(ctx, callerScope(callerID))
}

func (s *alertService) UnreadCount(ctx context.Context, callerID int64) (int, error) {
	return s.ar.UnreadCount(ctx, callerScope(callerID))
}

func (s *alertService) preferencesFor(ctx context.Context, userID int64) *models.NotificationPreferences {
	prefs, exists, err := s.nr.GetByUserID(ctx, userID)
	if err != nil || !exists {
		if err != nil {
			slog.Info(err.Error())
		}
		return models.DefaultPreferences(userID)
	}
	return prefs
}

// callerScope maps a caller id to the alert scope: 0 means the
// anonymous/demo scope, stored as NULL.
func callerScope(callerID int64) sql.NullInt64 {
	if callerID == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: callerID, Valid: true}
}
