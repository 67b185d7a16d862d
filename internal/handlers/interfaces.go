package handlers

import (
	"context"

	"github.com/streamtube/backend/internal/auth"
	"github.com/streamtube/backend/internal/models"
)

// UserStore captures the persistence operations required by the account handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateAccount(ctx context.Context, userID, fullname, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (models.User, error)
	UpdateCoverImage(ctx context.Context, userID, coverURL string) (models.User, error)
}

// TokenService manages the JWT access/refresh pair lifecycle.
type TokenService interface {
	Rotate(ctx context.Context, userID string) (models.TokenPair, error)
	Validate(ctx context.Context, refreshToken string) (string, error)
	ParseAccess(accessToken string) (auth.AccessClaims, error)
}

// ProfileStore serves the aggregated read-side views.
type ProfileStore interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error)
}

// MediaUploader pushes a local temporary file to remote storage and returns
// its public URL. Implementations remove the local file regardless of outcome.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Tokens        TokenService
	Profiles      ProfileStore
	Media         MediaUploader
	UploadTempDir string
}
