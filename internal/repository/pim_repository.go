package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/contentpassport/pimtrack/internal/models"
)

type PIMRepository interface {
	Upsert(ctx context.Context, calc *models.PIMCalculation) (int64, error)
	ListByPassportEpoch(ctx context.Context, passportID int64, epoch int) ([]*models.PIMCalculation, error)
	ListByPassport(ctx context.Context, passportID int64) ([]*models.PIMCalculation, error)
	LatestEpoch(ctx context.Context, passportID int64) (int, bool, error)
	ListLeaderboardRows(ctx context.Context, epoch int) ([]*models.LeaderboardRow, error)
}

type pimRepository struct {
	db *sql.DB
}

func NewPIMRepository(db *sql.DB) PIMRepository {
	return &pimRepository{db: db}
}

// Upsert overwrites the (passport_id, epoch, platform) row, so a
// recomputation with unchanged inputs is idempotent.
func (r *pimRepository) Upsert(ctx context.Context, calc *models.PIMCalculation) (int64, error) {
	query := `
		INSERT INTO pim_calculations (passport_id, epoch, platform, raw_score, normalized_score, post_count, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (passport_id, epoch, platform) DO UPDATE
		SET raw_score = EXCLUDED.raw_score,
			normalized_score = EXCLUDED.normalized_score,
			post_count = EXCLUDED.post_count,
			calculated_at = EXCLUDED.calculated_at
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, calc.PassportID, calc.Epoch, calc.Platform,
		calc.RawScore, calc.NormalizedScore, calc.PostCount, time.Now()).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *pimRepository) ListByPassportEpoch(ctx context.Context, passportID int64, epoch int) ([]*models.PIMCalculation, error) {
	query := `
		SELECT id, passport_id, epoch, platform, raw_score, normalized_score, post_count, calculated_at
		FROM pim_calculations
		WHERE passport_id = $1 AND epoch = $2
		ORDER BY platform
	`
	return r.list(ctx, query, passportID, epoch)
}

func (r *pimRepository) ListByPassport(ctx context.Context, passportID int64) ([]*models.PIMCalculation, error) {
	query := `
		SELECT id, passport_id, epoch, platform, raw_score, normalized_score, post_count, calculated_at
		FROM pim_calculations
		WHERE passport_id = $1
		ORDER BY epoch DESC, platform
	`
	return r.list(ctx, query, passportID)
}

func (r *pimRepository) LatestEpoch(ctx context.Context, passportID int64) (int, bool, error) {
	query := `SELECT MAX(epoch) FROM pim_calculations WHERE passport_id = $1`

	var epoch sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, passportID).Scan(&epoch)
	if err != nil {
		slog.Info(err.Error())
		return 0, false, err
	}
	if !epoch.Valid {
		return 0, false, nil
	}

	return int(epoch.Int64), true, nil
}

func (r *pimRepository) ListLeaderboardRows(ctx context.Context, epoch int) ([]*models.LeaderboardRow, error) {
	query := `
		SELECT c.passport_id, p.acp_id, p.prompt, p.preview_url, c.platform, c.normalized_score
		FROM pim_calculations c
		JOIN passports p ON p.id = c.passport_id
		WHERE c.epoch = $1
	`
	rows, err := r.db.QueryContext(ctx, query, epoch)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []*models.LeaderboardRow
	for rows.Next() {
		var lr models.LeaderboardRow
		err := rows.Scan(&lr.PassportID, &lr.AcpID, &lr.Prompt, &lr.PreviewURL,
			&lr.Platform, &lr.NormalizedScore)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		result = append(result, &lr)
	}
	return result, rows.Err()
}

func (r *pimRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.PIMCalculation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var calcs []*models.PIMCalculation
	for rows.Next() {
		var c models.PIMCalculation
		err := rows.Scan(&c.ID, &c.PassportID, &c.Epoch, &c.Platform, &c.RawScore,
			&c.NormalizedScore, &c.PostCount, &c.CalculatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		calcs = append(calcs, &c)
	}
	return calcs, rows.Err()
}
