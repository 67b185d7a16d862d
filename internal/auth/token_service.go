package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/streamtube/backend/internal/models"
)

// UserStore captures the persistence operations the token service needs: a
// user lookup and the targeted write to the single refresh-token slot.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error
}

// AccessClaims is the payload carried by access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

// RefreshClaims is the payload carried by refresh tokens. Only the subject
// (user id) is encoded.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenService issues, rotates and validates the JWT access/refresh pair.
// Access and refresh tokens are signed with distinct secrets and lifetimes.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	users   UserStore
	nowFunc func() time.Time
}

// NewTokenService constructs a TokenService over the provided user store.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, users UserStore) *TokenService {
	if users == nil {
		panic("auth: user store must not be nil")
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		users:         users,
	}
}

// IssuePair derives a signed access and refresh token for the user. It is a
// pure function of the user identity and the current clock; nothing is
// persisted here.
func (s *TokenService) IssuePair(user models.User) (models.TokenPair, error) {
	now := s.now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		Username: user.Username,
		Email:    user.Email,
		Fullname: user.Fullname,
	})

	accessToken, err := access.SignedString(s.accessSecret)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})

	refreshToken, err := refresh.SignedString(s.refreshSecret)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Rotate loads the user, issues a fresh pair and overwrites the stored
// refresh-token slot with the new value. Any failure collapses into the
// opaque ErrTokenGeneration.
func (s *TokenService) Rotate(ctx context.Context, userID string) (models.TokenPair, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.TokenPair{}, ErrTokenGeneration
	}

	pair, err := s.IssuePair(user)
	if err != nil {
		return models.TokenPair{}, ErrTokenGeneration
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return models.TokenPair{}, ErrTokenGeneration
	}

	return pair, nil
}

// Validate verifies a presented refresh token: signature and expiry first,
// then that the subject still exists, then that the presented value
// byte-equals the user's stored slot. The equality check is what enforces
// single-session rotation semantics; an already-rotated token fails here
// even though its signature is still valid.
func (s *TokenService) Validate(ctx context.Context, presented string) (string, error) {
	if presented == "" {
		return "", ErrTokenMissing
	}

	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(presented, claims, func(*jwt.Token) (interface{}, error) {
		return s.refreshSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return "", ErrTokenInvalid
	}

	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(presented)) != 1 {
		return "", ErrTokenMismatch
	}

	return user.ID, nil
}

// ParseAccess verifies an access token and returns its claims. Used by the
// authentication middleware.
func (s *TokenService) ParseAccess(tokenString string) (AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.accessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AccessClaims{}, ErrTokenExpired
		}
		return AccessClaims{}, ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return AccessClaims{}, ErrTokenInvalid
	}

	return *claims, nil
}

// WithNowFunc overrides the time source. Useful for tests.
func (s *TokenService) WithNowFunc(now func() time.Time) *TokenService {
	s.nowFunc = now
	return s
}

func (s *TokenService) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now().UTC()
}
