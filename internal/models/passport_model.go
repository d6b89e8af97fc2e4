package models

import (
	"database/sql"
	"time"
)

// Passport is a read-only view of a registered content record. Rows are
// owned by the registry service; this core only looks them up.
type Passport struct {
	ID         int64         `db:"id" json:"id"`
	AcpID      string        `db:"acp_id" json:"acp_id"`
	Prompt     string        `db:"prompt" json:"prompt"`
	PreviewURL string        `db:"preview_url" json:"preview_url"`
	OwnerID    sql.NullInt64 `db:"owner_id" json:"-"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

type PassportSummary struct {
	ID         int64  `json:"id"`
	AcpID      string `json:"acp_id"`
	Prompt     string `json:"prompt"`
	PreviewURL string `json:"preview_url"`
}

func (p *Passport) Summary() PassportSummary {
	return PassportSummary{
		ID:         p.ID,
		AcpID:      p.AcpID,
		Prompt:     p.Prompt,
		PreviewURL: p.PreviewURL,
	}
}

// OwnedBy reports whether the caller may act on this passport: unowned
// passports are open to everyone, owned ones only to their owner.
func (p *Passport) OwnedBy(userID int64) bool {
	if !p.OwnerID.Valid {
		return true
	}
	return p.OwnerID.Int64 == userID
}
