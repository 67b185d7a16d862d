package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamtube/backend/internal/models"
)

type fakeUserStore struct {
	users   map[string]models.User
	saveErr error
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, errors.New("not found")
	}
	return user, nil
}

func (s *fakeUserStore) UpdateRefreshToken(_ context.Context, userID, refreshToken string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	user, ok := s.users[userID]
	if !ok {
		return errors.New("not found")
	}
	user.RefreshToken = refreshToken
	s.users[userID] = user
	return nil
}

func testUser() models.User {
	return models.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		Fullname: "Alice Example",
	}
}

func newTestService(store UserStore) *TokenService {
	return NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour, store)
}

func TestIssuePairEncodesIdentity(t *testing.T) {
	svc := newTestService(newFakeUserStore(testUser()))

	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice Example", claims.Fullname)
}

func TestRotatePersistsNewRefreshToken(t *testing.T) {
	store := newFakeUserStore(testUser())
	svc := newTestService(store)

	pair, err := svc.Rotate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, store.users["user-1"].RefreshToken)
}

func TestRotateFailuresAreOpaque(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		svc := newTestService(newFakeUserStore())
		_, err := svc.Rotate(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrTokenGeneration)
	})

	t.Run("persistence failure", func(t *testing.T) {
		store := newFakeUserStore(testUser())
		store.saveErr = errors.New("connection reset")
		svc := newTestService(store)
		_, err := svc.Rotate(context.Background(), "user-1")
		assert.ErrorIs(t, err, ErrTokenGeneration)
	})
}

func TestValidateAcceptsCurrentToken(t *testing.T) {
	store := newFakeUserStore(testUser())
	svc := newTestService(store)

	pair, err := svc.Rotate(context.Background(), "user-1")
	require.NoError(t, err)

	userID, err := svc.Validate(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateRejectsSupersededToken(t *testing.T) {
	store := newFakeUserStore(testUser())
	svc := newTestService(store)

	old, err := svc.Rotate(context.Background(), "user-1")
	require.NoError(t, err)

	// Rotating again replaces the stored slot; force a different clock second
	// so the two tokens are not byte-identical.
	svc.WithNowFunc(func() time.Time { return time.Now().UTC().Add(2 * time.Second) })
	_, err = svc.Rotate(context.Background(), "user-1")
	require.NoError(t, err)

	svc.WithNowFunc(nil)
	_, err = svc.Validate(context.Background(), old.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenMismatch)
}

func TestValidateRejectsBadTokens(t *testing.T) {
	store := newFakeUserStore(testUser())
	svc := newTestService(store)

	t.Run("missing", func(t *testing.T) {
		_, err := svc.Validate(context.Background(), "")
		assert.ErrorIs(t, err, ErrTokenMissing)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("access-secret", "other-secret", time.Minute, time.Hour, store)
		pair, err := other.IssuePair(testUser())
		require.NoError(t, err)
		_, err = svc.Validate(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		issued := newTestService(store)
		issued.WithNowFunc(func() time.Time { return time.Now().UTC().Add(-30 * 24 * time.Hour) })
		pair, err := issued.IssuePair(testUser())
		require.NoError(t, err)

		_, err = svc.Validate(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("user gone", func(t *testing.T) {
		pair, err := svc.Rotate(context.Background(), "user-1")
		require.NoError(t, err)
		delete(store.users, "user-1")
		defer func() { store.users["user-1"] = testUser() }()

		_, err = svc.Validate(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestParseAccessRejectsExpired(t *testing.T) {
	store := newFakeUserStore(testUser())
	issued := newTestService(store)
	issued.WithNowFunc(func() time.Time { return time.Now().UTC().Add(-time.Hour) })

	pair, err := issued.IssuePair(testUser())
	require.NoError(t, err)

	fresh := newTestService(store)
	_, err = fresh.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
