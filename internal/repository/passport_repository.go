package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/contentpassport/pimtrack/internal/models"
)

// PassportRepository is a read-only view of the registry's passports
// table. Writes happen in the registry service, not here.
type PassportRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Passport, bool, error)
	ListActiveSince(ctx context.Context, since time.Time) ([]int64, error)
}

type passportRepository struct {
	db *sql.DB
}

func NewPassportRepository(db *sql.DB) PassportRepository {
	return &passportRepository{db: db}
}

func (r *passportRepository) GetByID(ctx context.Context, id int64) (*models.Passport, bool, error) {
	query := `SELECT id, acp_id, prompt, preview_url, owner_id, created_at FROM passports WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var p models.Passport
	err := row.Scan(&p.ID, &p.AcpID, &p.Prompt, &p.PreviewURL, &p.OwnerID, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &p, true, nil
}

// ListActiveSince returns passports whose matched posts received an
// engagement snapshot after the given time. Used by the recalculation
// job to avoid rescoring idle passports.
func (r *passportRepository) ListActiveSince(ctx context.Context, since time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT m.passport_id
		FROM matches m
		JOIN engagement_snapshots s ON s.tracked_post_id = m.tracked_post_id
		WHERE s.created_at >= $1
	`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
