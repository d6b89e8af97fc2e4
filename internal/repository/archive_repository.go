package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contentpassport/pimtrack/internal/models"
)

type ArchiveRepository interface {
	Create(ctx context.Context, archive *models.MediaArchive) (int64, error)
	ExistsForSourceURL(ctx context.Context, trackedPostID int64, sourceURL string) (bool, error)
	ListByPostID(ctx context.Context, trackedPostID int64) ([]*models.MediaArchive, error)
}

type archiveRepository struct {
	db *sql.DB
}

func NewArchiveRepository(db *sql.DB) ArchiveRepository {
	return &archiveRepository{db: db}
}

func (r *archiveRepository) Create(ctx context.Context, archive *models.MediaArchive) (int64, error) {
	query := `
		INSERT INTO media_archives (tracked_post_id, source_url, object_key, archive_url, content_type, byte_size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, archive.TrackedPostID, archive.SourceURL,
		archive.ObjectKey, archive.ArchiveURL, archive.ContentType, archive.ByteSize).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *archiveRepository) ExistsForSourceURL(ctx context.Context, trackedPostID int64, sourceURL string) (bool, error) {
	query := `SELECT 1 FROM media_archives WHERE tracked_post_id = $1 AND source_url = $2 LIMIT 1`

	var result int
	err := r.db.QueryRowContext(ctx, query, trackedPostID, sourceURL).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *archiveRepository) ListByPostID(ctx context.Context, trackedPostID int64) ([]*models.MediaArchive, error) {
	query := `
		SELECT id, tracked_post_id, source_url, object_key, archive_url, content_type, byte_size, created_at
		FROM media_archives WHERE tracked_post_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, trackedPostID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var archives []*models.MediaArchive
	for rows.Next() {
		var a models.MediaArchive
		err := rows.Scan(&a.ID, &a.TrackedPostID, &a.SourceURL, &a.ObjectKey,
			&a.ArchiveURL, &a.ContentType, &a.ByteSize, &a.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		archives = append(archives, &a)
	}
	return archives, rows.Err()
}
