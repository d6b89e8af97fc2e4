package models

import "time"

type NotificationPreferences struct {
	UserID              int64     `db:"user_id" json:"user_id"`
	ViralEnabled        bool      `db:"viral_enabled" json:"viral_enabled"`
	RepostEnabled       bool      `db:"repost_enabled" json:"repost_enabled"`
	InfringementEnabled bool      `db:"infringement_enabled" json:"infringement_enabled"`
	RevenueEnabled      bool      `db:"revenue_enabled" json:"revenue_enabled"`
	RankingEnabled      bool      `db:"ranking_enabled" json:"ranking_enabled"`
	ViralThreshold      int64     `db:"viral_threshold" json:"viral_threshold"`
	Channels            []string  `db:"channels" json:"channels"`
	WebhookURL          string    `db:"webhook_url" json:"webhook_url,omitempty"`
	TelegramChatID      string    `db:"telegram_chat_id" json:"telegram_chat_id,omitempty"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultPreferences is what a user with no stored row gets.
func DefaultPreferences(userID int64) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:              userID,
		ViralEnabled:        true,
		RepostEnabled:       true,
		InfringementEnabled: true,
		RevenueEnabled:      true,
		RankingEnabled:      true,
		ViralThreshold:      100,
		Channels:            []string{ChannelInApp},
	}
}

// Enabled reports whether the given alert type is switched on.
func (p *NotificationPreferences) Enabled(alertType string) bool {
	switch alertType {
	case AlertTypeViral:
		return p.ViralEnabled
	case AlertTypeRepost:
		return p.RepostEnabled
	case AlertTypeInfringement:
		return p.InfringementEnabled
	case AlertTypeRevenue:
		return p.RevenueEnabled
	case AlertTypeRanking:
		return p.RankingEnabled
	}
	return false
}
