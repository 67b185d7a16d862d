package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	accounts := AccountHandler{
		Users:   deps.Users,
		Tokens:  deps.Tokens,
		Media:   deps.Media,
		TempDir: deps.UploadTempDir,
	}
	channels := ChannelHandler{Profiles: deps.Profiles, Tokens: deps.Tokens}

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(deps.Tokens, deps.Users, next)
	}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/users/register", accounts.Register)
	mux.HandleFunc("/api/v1/users/login", accounts.Login)
	mux.HandleFunc("/api/v1/users/logout", authed(accounts.Logout))
	mux.HandleFunc("/api/v1/users/refresh-token", accounts.RefreshToken)
	mux.HandleFunc("/api/v1/users/change-password", authed(accounts.ChangePassword))
	mux.HandleFunc("/api/v1/users/current-user", authed(accounts.CurrentUser))
	mux.HandleFunc("/api/v1/users/update-account", authed(accounts.UpdateAccount))
	mux.HandleFunc("/api/v1/users/avatar", authed(accounts.UpdateAvatar))
	mux.HandleFunc("/api/v1/users/cover-image", authed(accounts.UpdateCoverImage))
	mux.HandleFunc("/api/v1/users/channel/{username}", channels.Profile)
	mux.HandleFunc("/api/v1/users/history", authed(channels.History))
}
