package transfer

import "encoding/json"

type CreateAlertRequest struct {
	PassportID int64           `json:"passport_id,omitempty"`
	AlertType  string          `json:"alert_type"`
	Title      string          `json:"title"`
	Body       string          `json:"body"`
	Data       json.RawMessage `json:"data,omitempty"`
	Channels   []string        `json:"channels,omitempty"`
}

type AlertFilters struct {
	AlertType  string `json:"alert_type,omitempty"`
	UnreadOnly bool   `json:"unread_only,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

type PreferencesUpdate struct {
	ViralEnabled        *bool     `json:"viral_enabled,omitempty"`
	RepostEnabled       *bool     `json:"repost_enabled,omitempty"`
	InfringementEnabled *bool     `json:"infringement_enabled,omitempty"`
	RevenueEnabled      *bool     `json:"revenue_enabled,omitempty"`
	RankingEnabled      *bool     `json:"ranking_enabled,omitempty"`
	ViralThreshold      *int64    `json:"viral_threshold,omitempty"`
	Channels            *[]string `json:"channels,omitempty"`
	WebhookURL          *string   `json:"webhook_url,omitempty"`
	TelegramChatID      *string   `json:"telegram_chat_id,omitempty"`
}
