package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

type Alert struct {
	ID         int64           `db:"id" json:"id"`
	UserID     sql.NullInt64   `db:"user_id" json:"user_id,omitempty"`
	PassportID sql.NullInt64   `db:"passport_id" json:"passport_id,omitempty"`
	AlertType  string          `db:"alert_type" json:"alert_type"`
	Title      string          `db:"title" json:"title"`
	Body       string          `db:"body" json:"body"`
	Data       json.RawMessage `db:"data" json:"data,omitempty"`
	Channels   []string        `db:"channels" json:"channels"`
	IsRead     bool            `db:"is_read" json:"is_read"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

const (
	AlertTypeViral        = "viral"
	AlertTypeRepost       = "repost"
	AlertTypeInfringement = "infringement"
	AlertTypeRevenue      = "revenue"
	AlertTypeRanking      = "ranking"
)

const (
	ChannelInApp    = "in_app"
	ChannelWebhook  = "webhook"
	ChannelTelegram = "telegram"
)

// MaxAlertDataBytes bounds the free-form payload so untrusted input
// can't grow storage without limit.
const MaxAlertDataBytes = 4096

func IsValidAlertType(alertType string) bool {
	switch alertType {
	case AlertTypeViral, AlertTypeRepost, AlertTypeInfringement, AlertTypeRevenue, AlertTypeRanking:
		return true
	}
	return false
}
