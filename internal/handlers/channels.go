package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/streamtube/backend/internal/logging"
	"github.com/streamtube/backend/internal/repositories"
)

// ChannelHandler serves the aggregated read-side views: channel profiles and
// watch history.
type ChannelHandler struct {
	Profiles ProfileStore
	Tokens   TokenService
}

// Profile handles GET /api/v1/users/channel/{username}. The viewer does not
// have to be authenticated; an anonymous viewer simply never counts as
// subscribed.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.Profiles.ChannelProfile(ctx, username, viewerID(r, h.Tokens))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel does not exist")
			return
		}
		logger.Error("channel profile query failed", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch channel profile")
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile fetched")
}

// History handles GET /api/v1/users/history for the authenticated user. An
// empty watch history yields an empty list, not an error.
func (h ChannelHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	history, err := h.Profiles.WatchHistory(ctx, user.ID)
	if err != nil {
		logger.Error("watch history query failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch watch history")
		return
	}

	respondData(ctx, w, http.StatusOK, history, "watch history fetched")
}
