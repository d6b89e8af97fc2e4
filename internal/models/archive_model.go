package models

import "time"

// MediaArchive records a tracked post's media URL mirrored into object
// storage, kept as evidence for infringement claims.
type MediaArchive struct {
	ID            int64     `db:"id" json:"id"`
	TrackedPostID int64     `db:"tracked_post_id" json:"tracked_post_id"`
	SourceURL     string    `db:"source_url" json:"source_url"`
	ObjectKey     string    `db:"object_key" json:"object_key"`
	ArchiveURL    string    `db:"archive_url" json:"archive_url"`
	ContentType   string    `db:"content_type" json:"content_type"`
	ByteSize      int64     `db:"byte_size" json:"byte_size"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
