package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contentpassport/pimtrack/internal/models"
)

type MatchRepository interface {
	Upsert(ctx context.Context, match *models.Match) (int64, error)
	ListByPassportID(ctx context.Context, passportID int64) ([]*models.Match, error)
	ListEngagementByPassportID(ctx context.Context, passportID int64) ([]*models.MatchedEngagement, error)
}

type matchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) MatchRepository {
	return &matchRepository{db: db}
}

// Upsert keeps at most one match per (tracked_post_id, passport_id).
func (r *matchRepository) Upsert(ctx context.Context, match *models.Match) (int64, error) {
	query := `
		INSERT INTO matches (tracked_post_id, passport_id, match_type, distance, has_credit, is_authorized)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tracked_post_id, passport_id) DO UPDATE
		SET match_type = EXCLUDED.match_type,
			distance = EXCLUDED.distance,
			has_credit = EXCLUDED.has_credit,
			is_authorized = EXCLUDED.is_authorized
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, match.TrackedPostID, match.PassportID,
		match.MatchType, match.Distance, match.HasCredit, match.IsAuthorized).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *matchRepository) ListByPassportID(ctx context.Context, passportID int64) ([]*models.Match, error) {
	query := `
		SELECT id, tracked_post_id, passport_id, match_type, distance, has_credit, is_authorized, matched_at
		FROM matches WHERE passport_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, passportID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var m models.Match
		err := rows.Scan(&m.ID, &m.TrackedPostID, &m.PassportID, &m.MatchType,
			&m.Distance, &m.HasCredit, &m.IsAuthorized, &m.MatchedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

// ListEngagementByPassportID joins every match for the passport to its
// post and that post's latest snapshot. Posts without any snapshot come
// back with zero counters so they still count toward post totals.
func (r *matchRepository) ListEngagementByPassportID(ctx context.Context, passportID int64) ([]*models.MatchedEngagement, error) {
	query := `
		SELECT p.id, p.platform,
			COALESCE(e.views, 0), COALESCE(e.likes, 0), COALESCE(e.shares, 0),
			COALESCE(e.comments, 0), COALESCE(e.saves, 0)
		FROM matches m
		JOIN tracked_posts p ON p.id = m.tracked_post_id
		LEFT JOIN LATERAL (
			SELECT views, likes, shares, comments, saves
			FROM engagement_snapshots s
			WHERE s.tracked_post_id = p.id
			ORDER BY s.snapshot_at DESC
			LIMIT 1
		) e ON true
		WHERE m.passport_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, passportID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []*models.MatchedEngagement
	for rows.Next() {
		var me models.MatchedEngagement
		err := rows.Scan(&me.TrackedPostID, &me.Platform, &me.Views, &me.Likes,
			&me.Shares, &me.Comments, &me.Saves)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		result = append(result, &me)
	}
	return result, rows.Err()
}
