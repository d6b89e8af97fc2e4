package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/transfer"
	"github.com/lib/pq"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) (int64, error)
	ListByUser(ctx context.Context, userID sql.NullInt64, filters transfer.AlertFilters) ([]*models.Alert, error)
	MarkRead(ctx context.Context, id int64, userID sql.NullInt64) (bool, error)
	MarkAllRead(ctx context.Context, userID sql.NullInt64) error
	UnreadCount(ctx context.Context, userID sql.NullInt64) (int, error)
	ExistsViralForPost(ctx context.Context, trackedPostID, passportID int64) (bool, error)
}

type alertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) (int64, error) {
	query := `
		INSERT INTO alerts (user_id, passport_id, alert_type, title, body, data, channels)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	data := alert.Data
	if len(data) == 0 {
		data = []byte("{}")
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query, alert.UserID, alert.PassportID,
		alert.AlertType, alert.Title, alert.Body, []byte(data),
		pq.Array(alert.Channels)).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// ListByUser scopes to the given user; a NULL user id selects the
// anonymous/demo records.
func (r *alertRepository) ListByUser(ctx context.Context, userID sql.NullInt64, filters transfer.AlertFilters) ([]*models.Alert, error) {
	query := `
		SELECT id, user_id, passport_id, alert_type, title, body, data, channels, is_read, created_at
		FROM alerts
		WHERE user_id IS NOT DISTINCT FROM $1
			AND ($2 = '' OR alert_type = $2)
			AND ($3 = false OR is_read = false)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, query, userID, filters.AlertType,
		filters.UnreadOnly, limit, filters.Offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		var a models.Alert
		var data []byte
		err := rows.Scan(&a.ID, &a.UserID, &a.PassportID, &a.AlertType, &a.Title,
			&a.Body, &data, pq.Array(&a.Channels), &a.IsRead, &a.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		a.Data = data
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

func (r *alertRepository) MarkRead(ctx context.Context, id int64, userID sql.NullInt64) (bool, error) {
	query := `UPDATE alerts SET is_read = true WHERE id = $1 AND user_id IS NOT DISTINCT FROM $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return affected > 0, nil
}

func (r *alertRepository) MarkAllRead(ctx context.Context, userID sql.NullInt64) error {
	query := `UPDATE alerts SET is_read = true WHERE user_id IS NOT DISTINCT FROM $1 AND is_read = false`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *alertRepository) UnreadCount(ctx context.Context, userID sql.NullInt64) (int, error) {
	query := `SELECT COUNT(*) FROM alerts WHERE user_id IS NOT DISTINCT FROM $1 AND is_read = false`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return count, nil
}

// ExistsViralForPost backs the dedup policy: at most one viral alert
// per (tracked post, passport) pair. The post id lives in the payload.
func (r *alertRepository) ExistsViralForPost(ctx context.Context, trackedPostID, passportID int64) (bool, error) {
	query := `
		SELECT 1 FROM alerts
		WHERE alert_type = $1 AND passport_id = $2 AND (data->>'tracked_post_id')::bigint = $3
		LIMIT 1
	`

	var result int
	err := r.db.QueryRowContext(ctx, query, models.AlertTypeViral, passportID, trackedPostID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}
