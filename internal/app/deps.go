package app

import (
	"context"
	"fmt"

	"github.com/streamtube/backend/internal/auth"
	"github.com/streamtube/backend/internal/config"
	"github.com/streamtube/backend/internal/db"
	"github.com/streamtube/backend/internal/handlers"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	profiles := repositories.NewPostgresProfileRepository(pool)

	tokens := auth.NewTokenService(
		cfg.AccessToken.Secret, cfg.RefreshToken.Secret,
		cfg.AccessToken.TTL, cfg.RefreshToken.TTL,
		users,
	)

	media, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("configure media storage: %w", err)
	}

	return handlers.Dependencies{
		Users:         users,
		Tokens:        tokens,
		Profiles:      profiles,
		Media:         media,
		UploadTempDir: cfg.UploadTempDir,
	}, nil
}
