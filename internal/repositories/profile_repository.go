package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/streamtube/backend/internal/db"
	"github.com/streamtube/backend/internal/logging"
	"github.com/streamtube/backend/internal/models"
)

// PostgresProfileRepository answers the read-side aggregation queries over
// users, subscriptions and videos.
type PostgresProfileRepository struct {
	pool db.Pool
}

// NewPostgresProfileRepository constructs a profile repository backed by PostgreSQL.
func NewPostgresProfileRepository(pool db.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// ChannelProfile resolves a channel by username (case-insensitive), counting
// its subscribers, the channels it subscribes to, and whether the viewer is
// among its subscribers. viewerID may be empty for anonymous viewers.
func (r *PostgresProfileRepository) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	ctx, span := logging.StartSpan(ctx, "repositories.channel_profile")
	defer span.End()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.email, u.fullname, u.avatar_url, COALESCE(u.cover_url, ''),
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_count,
               EXISTS (
                   SELECT 1 FROM subscriptions s
                   WHERE s.channel_id = u.id AND s.subscriber_id = NULLIF($2, '')::UUID
               ) AS is_subscribed
        FROM users u
        WHERE u.username = LOWER($1)
    `, username, viewerID)

	var profile models.ChannelProfile
	err = row.Scan(&profile.ID, &profile.Username, &profile.Email, &profile.Fullname,
		&profile.AvatarURL, &profile.CoverURL, &profile.SubscribersCount,
		&profile.ChannelsSubscribedCount, &profile.IsSubscribed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// WatchHistory returns the user's watch history in order, each video joined
// with its owner's public fields. An empty history yields an empty slice.
func (r *PostgresProfileRepository) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	ctx, span := logging.StartSpan(ctx, "repositories.watch_history")
	defer span.End()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.duration, v.views, v.created_at,
               o.fullname, o.username, o.avatar_url
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users o ON o.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.position ASC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	history := make([]models.WatchedVideo, 0)
	for rows.Next() {
		var (
			video     models.WatchedVideo
			createdAt time.Time
		)
		if err := rows.Scan(&video.ID, &video.Title, &video.Description, &video.VideoURL,
			&video.ThumbnailURL, &video.Duration, &video.Views, &createdAt,
			&video.Owner.Fullname, &video.Owner.Username, &video.Owner.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan watched video: %w", err)
		}
		video.CreatedAt = createdAt.UTC()
		history = append(history, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return history, nil
}

var _ ProfileRepository = (*PostgresProfileRepository)(nil)
