package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/streamtube/backend/internal/logging"
	"github.com/streamtube/backend/internal/models"
	"github.com/streamtube/backend/internal/repositories"
)

// AccountHandler implements registration, login and account maintenance
// endpoints.
type AccountHandler struct {
	Users      UserStore
	Tokens     TokenService
	Media      MediaUploader
	TempDir    string
	NowFunc    func() time.Time
	CookiePath string
}

// Register handles POST /api/v1/users/register requests (multipart form).
func (h AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Media == nil {
		logger.Error("registration dependencies unavailable", "hasUsers", h.Users != nil, "hasMedia", h.Media != nil)
		respondError(ctx, w, http.StatusInternalServerError, "registration services unavailable")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid registration form", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	fullname := strings.TrimSpace(r.FormValue("fullname"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	password := strings.TrimSpace(r.FormValue("password"))

	if fullname == "" || email == "" || username == "" || password == "" {
		logger.Warn("registration missing fields", "username", username, "email", email)
		respondError(ctx, w, http.StatusBadRequest, "all fields are required")
		return
	}

	if _, err := h.Users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		logger.Warn("registration duplicate account", "username", username, "email", email)
		respondError(ctx, w, http.StatusConflict, "username or email already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("registration lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
		return
	}

	avatarPath, err := saveMultipartFile(r, "avatar", h.TempDir)
	if err != nil {
		if errors.Is(err, errNoFile) {
			respondError(ctx, w, http.StatusBadRequest, "avatar image is required")
			return
		}
		logger.Error("registration avatar intake failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to read avatar upload")
		return
	}

	avatarURL, err := h.Media.Upload(ctx, avatarPath)
	if err != nil || avatarURL == "" {
		logger.Warn("registration avatar upload failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "avatar image is required")
		return
	}

	// The cover image is optional and its upload failure is tolerated.
	coverURL := ""
	if coverPath, err := saveMultipartFile(r, "coverImage", h.TempDir); err == nil {
		if url, err := h.Media.Upload(ctx, coverPath); err == nil {
			coverURL = url
		} else {
			logger.Warn("cover image upload failed", "error", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("registration failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Fullname:  fullname,
		Password:  string(hashed),
		AvatarURL: avatarURL,
		CoverURL:  coverURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "username or email already exists")
			return
		}
		logger.Error("registration failed to create user", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create account")
		return
	}

	created, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		logger.Error("registration re-fetch failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "user not created")
		return
	}

	respondData(ctx, w, http.StatusCreated, created.Profile(), "user created successfully")
}

// Login handles POST /api/v1/users/login requests.
func (h AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Tokens == nil {
		logger.Error("authentication dependencies unavailable", "hasUsers", h.Users != nil, "hasTokens", h.Tokens != nil)
		respondError(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if (req.Username == "" && req.Email == "") || req.Password == "" {
		logger.Warn("login missing credentials", "username", req.Username, "email", req.Email)
		respondError(ctx, w, http.StatusBadRequest, "username or email and password are required")
		return
	}

	user, err := h.Users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		logger.Error("login user lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusBadRequest, "password is incorrect")
		return
	}

	pair, err := h.Tokens.Rotate(ctx, user.ID)
	if err != nil {
		logger.Error("login failed to rotate tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.setTokenCookies(w, pair)
	respondData(ctx, w, http.StatusOK, loginResponse{
		User:         user.Profile(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "user logged in successfully")
}

// Logout handles POST /api/v1/users/logout. The refresh-token slot is
// cleared; the account row itself is left intact.
func (h AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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

	if err := h.Users.UpdateRefreshToken(ctx, user.ID, ""); err != nil {
		logger.Error("logout failed to clear refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to log out")
		return
	}

	h.clearTokenCookies(w)
	respondData(ctx, w, http.StatusOK, struct{}{}, "user logged out successfully")
}

// RefreshToken handles POST /api/v1/users/refresh-token. The refresh token is
// read from the cookie or the JSON body, validated against the stored slot and
// exchanged for a fresh pair.
func (h AccountHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Tokens == nil {
		logger.Error("token service unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "token service unavailable")
		return
	}

	presented := refreshTokenFromRequest(r)
	if presented == "" {
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is required")
		return
	}

	userID, err := h.Tokens.Validate(ctx, presented)
	if err != nil {
		logger.Warn("refresh token rejected", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, err.Error())
		return
	}

	pair, err := h.Tokens.Rotate(ctx, userID)
	if err != nil {
		logger.Error("refresh failed to rotate tokens", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to refresh session")
		return
	}

	h.setTokenCookies(w, pair)
	respondData(ctx, w, http.StatusOK, pair, "access token refreshed")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change-password payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, http.StatusBadRequest, "old and new passwords are required")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		logger.Warn("change-password old password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "old password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("change-password failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	if err := h.Users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		logger.Error("change-password persistence failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to change password")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "password changed successfully")
}

// CurrentUser handles GET /api/v1/users/current-user.
func (h AccountHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	user, ok := currentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondData(ctx, w, http.StatusOK, user.Profile(), "current user fetched")
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update-account payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Fullname = strings.TrimSpace(req.Fullname)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Fullname == "" || req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "email and fullname are required")
		return
	}

	updated, err := h.Users.UpdateAccount(ctx, user.ID, req.Fullname, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email already in use")
			return
		}
		logger.Error("update-account persistence failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update account")
		return
	}

	respondData(ctx, w, http.StatusOK, updated.Profile(), "account updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar (single file upload).
func (h AccountHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.Users.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image (single file upload).
func (h AccountHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.Users.UpdateCoverImage)
}

func (h AccountHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, update func(ctx context.Context, userID, url string) (models.User, error)) {
	if r.Method != http.MethodPatch {
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

	localPath, err := saveMultipartFile(r, field, h.TempDir)
	if err != nil {
		if errors.Is(err, errNoFile) {
			respondError(ctx, w, http.StatusBadRequest, field+" file is required")
			return
		}
		logger.Error("image intake failed", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	url, err := h.Media.Upload(ctx, localPath)
	if err != nil || url == "" {
		logger.Warn("image upload failed", "field", field, "error", err)
		respondError(ctx, w, http.StatusBadRequest, "upload did not yield a url")
		return
	}

	updated, err := update(ctx, user.ID, url)
	if err != nil {
		logger.Error("image persistence failed", "field", field, "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update "+field)
		return
	}

	respondData(ctx, w, http.StatusOK, updated.Profile(), field+" updated successfully")
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return strings.TrimSpace(req.RefreshToken)
	}
	return ""
}

func (h AccountHandler) setTokenCookies(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, tokenCookie("accessToken", pair.AccessToken, h.cookiePath(), 0))
	http.SetCookie(w, tokenCookie("refreshToken", pair.RefreshToken, h.cookiePath(), 0))
}

func (h AccountHandler) clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, tokenCookie("accessToken", "", h.cookiePath(), -1))
	http.SetCookie(w, tokenCookie("refreshToken", "", h.cookiePath(), -1))
}

func tokenCookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (h AccountHandler) cookiePath() string {
	if h.CookiePath != "" {
		return h.CookiePath
	}
	return "/"
}

func (h AccountHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         models.Profile `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}
