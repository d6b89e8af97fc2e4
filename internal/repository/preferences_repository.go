package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/lib/pq"
)

type PreferencesRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.NotificationPreferences, bool, error)
	Upsert(ctx context.Context, prefs *models.NotificationPreferences) error
}

type preferencesRepository struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) GetByUserID(ctx context.Context, userID int64) (*models.NotificationPreferences, bool, error) {
	query := `
		SELECT user_id, viral_enabled, repost_enabled, infringement_enabled, revenue_enabled, ranking_enabled,
			viral_threshold, channels, webhook_url, telegram_chat_id, updated_at
		FROM notification_preferences WHERE user_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, userID)

	var p models.NotificationPreferences
	err := row.Scan(&p.UserID, &p.ViralEnabled, &p.RepostEnabled, &p.InfringementEnabled,
		&p.RevenueEnabled, &p.RankingEnabled, &p.ViralThreshold, pq.Array(&p.Channels),
		&p.WebhookURL, &p.TelegramChatID, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &p, true, nil
}

func (r *preferencesRepository) Upsert(ctx context.Context, prefs *models.NotificationPreferences) error {
	query := `
		INSERT INTO notification_preferences (user_id, viral_enabled, repost_enabled, infringement_enabled,
			revenue_enabled, ranking_enabled, viral_threshold, channels, webhook_url, telegram_chat_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE
		SET viral_enabled = EXCLUDED.viral_enabled,
			repost_enabled = EXCLUDED.repost_enabled,
			infringement_enabled = EXCLUDED.infringement_enabled,
			revenue_enabled = EXCLUDED.revenue_enabled,
			ranking_enabled = EXCLUDED.ranking_enabled,
			viral_threshold = EXCLUDED.viral_threshold,
			channels = EXCLUDED.channels,
			webhook_url = EXCLUDED.webhook_url,
			telegram_chat_id = EXCLUDED.telegram_chat_id,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, prefs.UserID, prefs.ViralEnabled,
		prefs.RepostEnabled, prefs.InfringementEnabled, prefs.RevenueEnabled,
		prefs.RankingEnabled, prefs.ViralThreshold, pq.Array(prefs.Channels),
		prefs.WebhookURL, prefs.TelegramChatID, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
