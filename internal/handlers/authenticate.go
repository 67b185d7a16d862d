package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/streamtube/backend/internal/logging"
	"github.com/streamtube/backend/internal/models"
)

type userCtxKey struct{}

// currentUser returns the authenticated user attached by requireAuth.
func currentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(models.User)
	return user, ok
}

// accessTokenFromRequest extracts the access token from the accessToken
// cookie or an Authorization bearer header.
func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// requireAuth decodes the access token, loads the user and attaches it to the
// request context. Requests without a valid token receive a 401 envelope.
func requireAuth(tokens TokenService, users UserStore, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		token := accessTokenFromRequest(r)
		if token == "" {
			respondError(ctx, w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := tokens.ParseAccess(token)
		if err != nil {
			logger.Warn("access token rejected", "error", err)
			respondError(ctx, w, http.StatusUnauthorized, "invalid access token")
			return
		}

		user, err := users.FindByID(ctx, claims.Subject)
		if err != nil {
			logger.Warn("access token user lookup failed", "userId", claims.Subject, "error", err)
			respondError(ctx, w, http.StatusUnauthorized, "invalid access token")
			return
		}

		next(w, r.WithContext(context.WithValue(ctx, userCtxKey{}, user)))
	}
}

// viewerID resolves the requesting user's id when a valid access token is
// present, or returns empty for anonymous viewers.
func viewerID(r *http.Request, tokens TokenService) string {
	token := accessTokenFromRequest(r)
	if token == "" {
		return ""
	}
	claims, err := tokens.ParseAccess(token)
	if err != nil {
		return ""
	}
	return claims.Subject
}
