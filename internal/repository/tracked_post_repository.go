package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/lib/pq"
)

type TrackedPostRepository interface {
	Upsert(ctx context.Context, post *models.TrackedPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.TrackedPost, error)
	GetByPlatformPostID(ctx context.Context, platform, platformPostID string) (*models.TrackedPost, error)
}

type trackedPostRepository struct {
	db *sql.DB
}

func NewTrackedPostRepository(db *sql.DB) TrackedPostRepository {
	return &trackedPostRepository{db: db}
}

// Upsert inserts the post or, if (platform, platform_post_id) already
// exists, overwrites its mutable fields. Last writer wins.
func (r *trackedPostRepository) Upsert(ctx context.Context, post *models.TrackedPost) (int64, error) {
	query := `
		INSERT INTO tracked_posts (platform, platform_post_id, author_id, author_handle, content, media_urls, perceptual_hash, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (platform, platform_post_id) DO UPDATE
		SET author_id = EXCLUDED.author_id,
			author_handle = EXCLUDED.author_handle,
			content = EXCLUDED.content,
			media_urls = EXCLUDED.media_urls,
			perceptual_hash = EXCLUDED.perceptual_hash,
			posted_at = EXCLUDED.posted_at,
			updated_at = $9
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		post.Platform, post.PlatformPostID, post.AuthorID, post.AuthorHandle,
		post.Content, pq.Array(post.MediaURLs), post.PerceptualHash, post.PostedAt,
		time.Now()).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *trackedPostRepository) GetByID(ctx context.Context, id int64) (*models.TrackedPost, error) {
	query := `
		SELECT id, platform, platform_post_id, author_id, author_handle, content, media_urls, perceptual_hash, posted_at, first_tracked_at, updated_at
		FROM tracked_posts WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *trackedPostRepository) GetByPlatformPostID(ctx context.Context, platform, platformPostID string) (*models.TrackedPost, error) {
	query := `
		SELECT id, platform, platform_post_id, author_id, author_handle, content, media_urls, perceptual_hash, posted_at, first_tracked_at, updated_at
		FROM tracked_posts WHERE platform = $1 AND platform_post_id = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, platform, platformPostID))
}

func (r *trackedPostRepository) scanOne(row *sql.Row) (*models.TrackedPost, error) {
	var post models.TrackedPost
	err := row.Scan(&post.ID, &post.Platform, &post.PlatformPostID, &post.AuthorID,
		&post.AuthorHandle, &post.Content, pq.Array(&post.MediaURLs),
		&post.PerceptualHash, &post.PostedAt, &post.FirstTrackedAt, &post.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &post, nil
}
