package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contentpassport/pimtrack/internal/models"
)

type EngagementRepository interface {
	Append(ctx context.Context, snapshot *models.EngagementSnapshot) (int64, error)
	GetLatestByPostID(ctx context.Context, trackedPostID int64) (*models.EngagementSnapshot, bool, error)
	CountByPostID(ctx context.Context, trackedPostID int64) (int, error)
}

type engagementRepository struct {
	db *sql.DB
}

func NewEngagementRepository(db *sql.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// Append inserts a snapshot. The history is append-only: there is no
// update or delete path in this repository.
func (r *engagementRepository) Append(ctx context.Context, snapshot *models.EngagementSnapshot) (int64, error) {
	query := `
		INSERT INTO engagement_snapshots (tracked_post_id, views, likes, shares, comments, saves, snapshot_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, snapshot.TrackedPostID, snapshot.Views,
		snapshot.Likes, snapshot.Shares, snapshot.Comments, snapshot.Saves,
		snapshot.SnapshotAt).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// GetLatestByPostID selects by max snapshot_at, not insertion order,
// since snapshots may arrive out of order.
func (r *engagementRepository) GetLatestByPostID(ctx context.Context, trackedPostID int64) (*models.EngagementSnapshot, bool, error) {
	query := `
		SELECT id, tracked_post_id, views, likes, shares, comments, saves, snapshot_at, created_at
		FROM engagement_snapshots
		WHERE tracked_post_id = $1
		ORDER BY snapshot_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, trackedPostID)

	var s models.EngagementSnapshot
	err := row.Scan(&s.ID, &s.TrackedPostID, &s.Views, &s.Likes, &s.Shares,
		&s.Comments, &s.Saves, &s.SnapshotAt, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &s, true, nil
}

func (r *engagementRepository) CountByPostID(ctx context.Context, trackedPostID int64) (int, error) {
	query := `SELECT COUNT(*) FROM engagement_snapshots WHERE tracked_post_id = $1`

	var count int
	err := r.db.QueryRowContext(ctx, query, trackedPostID).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return count, nil
}
