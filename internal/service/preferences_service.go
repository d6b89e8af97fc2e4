package service

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"net/url"

	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/repository"
	"github.com/contentpassport/pimtrack/internal/transfer"
	"github.com/contentpassport/pimtrack/pkg/utils"
)

type PreferencesService interface {
	GetPreferences(ctx context.Context, callerID, userID int64) (*models.NotificationPreferences, error)
	UpdatePreferences(ctx context.Context, callerID, userID int64, update *transfer.PreferencesUpdate) (*models.NotificationPreferences, error)
}

type preferencesService struct {
	nr  repository.PreferencesRepository
	key []byte
}

// NewPreferencesService derives a fixed-size encryption key from the
// server secret; webhook and telegram targets are encrypted at rest.
func NewPreferencesService(nr repository.PreferencesRepository, secretKey string) PreferencesService {
	key := sha256.Sum256([]byte(secretKey))
	return &preferencesService{
		nr:  nr,
		key: key[:],
	}
}

func (s *preferencesService) GetPreferences(ctx context.Context, callerID, userID int64) (*models.NotificationPreferences, error) {
	if callerID == 0 {
		return nil, ErrUnauthorized
	}
	if callerID != userID {
		return nil, ErrForbidden
	}

	prefs, exists, err := s.nr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return models.DefaultPreferences(userID), nil
	}

	s.decryptTargets(prefs)
	return prefs, nil
}

// UpdatePreferences merges the partial update over the stored row (or
// the defaults when none exists) and upserts the result.
func (s *preferencesService) UpdatePreferences(ctx context.Context, callerID, userID int64, update *transfer.PreferencesUpdate) (*models.NotificationPreferences, error) {
	if callerID == 0 {
		return nil, ErrUnauthorized
	}
	if callerID != userID {
		return nil, ErrForbidden
	}
	if err := validatePreferencesUpdate(update); err != nil {
		return nil, err
	}

	prefs, exists, err := s.nr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		prefs = models.DefaultPreferences(userID)
	} else {
		s.decryptTargets(prefs)
	}

	applyUpdate(prefs, update)

	stored := *prefs
	if stored.WebhookURL != "" {
		stored.WebhookURL, err = utils.Encrypt([]byte(stored.WebhookURL), s.key)
		if err != nil {
			return nil, err
		}
	}
	if stored.TelegramChatID != "" {
		stored.TelegramChatID, err = utils.Encrypt([]byte(stored.TelegramChatID), s.key)
		if err != nil {
			return nil, err
		}
	}

	if err := s.nr.Upsert(ctx, &stored); err != nil {
		return nil, err
	}

	return prefs, nil
}

func (s *preferencesService) decryptTargets(prefs *models.NotificationPreferences) {
	if prefs.WebhookURL != "" {
		plain, err := utils.Decrypt(prefs.WebhookURL, s.key)
		if err != nil {
			slog.Info(err.Error())
		} else {
			prefs.WebhookURL = plain
		}
	}
	if prefs.TelegramChatID != "" {
		plain, err := utils.Decrypt(prefs.TelegramChatID, s.key)
		if err != nil {
			slog.Info(err.Error())
		} else {
			prefs.TelegramChatID = plain
		}
	}
}

func validatePreferencesUpdate(update *transfer.PreferencesUpdate) error {
	if update == nil {
		return invalidInput("preferences", "is required")
	}
	if update.ViralThreshold != nil && *update.ViralThreshold < 0 {
		return invalidInput("viral_threshold", "must be non-negative")
	}
	if update.Channels != nil {
		for _, ch := range *update.Channels {
			switch ch {
			case models.ChannelInApp, models.ChannelWebhook, models.ChannelTelegram:
			default:
				return invalidInput("channels", "unknown channel")
			}
		}
	}
	if update.WebhookURL != nil && *update.WebhookURL != "" {
		u, err := url.Parse(*update.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalidInput("webhook_url", "is not a valid http(s) URL")
		}
	}
	return nil
}

func applyUpdate(prefs *models.NotificationPreferences, update *transfer.PreferencesUpdate) {
	if update.ViralEnabled != nil {
		prefs.ViralEnabled = *update.ViralEnabled
	}
	if update.RepostEnabled != nil {
		prefs.RepostEnabled = *update.RepostEnabled
	}
	if update.InfringementEnabled != nil {
		prefs.InfringementEnabled = *update.InfringementEnabled
	}
	if update.RevenueEnabled != nil {
		prefs.RevenueEnabled = *update.RevenueEnabled
	}
	if update.RankingEnabled != nil {
		prefs.RankingEnabled = *update.RankingEnabled
	}
	if update.ViralThreshold != nil {
		prefs.ViralThreshold = *update.ViralThreshold
	}
	if update.Channels != nil {
		prefs.Channels = *update.Channels
	}
	if update.WebhookURL != nil {
		prefs.WebhookURL = *update.WebhookURL
	}
	if update.TelegramChatID != nil {
		prefs.TelegramChatID = *update.TelegramChatID
	}
}
