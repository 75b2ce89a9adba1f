package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vincula/internal/config"
	apperrors "vincula/internal/errors"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  ttl,
	})
}

func TestManager_IssueAndVerify(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.Issue("user-1", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "customer", claims.Role)
}

func TestManager_VerifyGarbage(t *testing.T) {
	m := newTestManager(time.Hour)

	_, err := m.Verify("not.a.token")
	require.Error(t, err)

	_, ok := apperrors.IsUnauthorizedError(err)
	assert.True(t, ok)
}

func TestManager_VerifyExpired(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, err := m.Issue("user-1", "customer")
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.Error(t, err)

	_, ok := apperrors.IsUnauthorizedError(err)
	assert.True(t, ok)
}

func TestManager_VerifyWrongSecret(t *testing.T) {
	token, err := newTestManager(time.Hour).Issue("user-1", "customer")
	require.NoError(t, err)

	other := NewManager(config.AuthConfig{JWTSecret: "different", TokenTTL: time.Hour})
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	m := newTestManager(time.Hour)
	mw := NewMiddleware(m, zap.NewNop())

	var gotUserID string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No token.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token.
	token, err := m.Issue("user-9", "customer")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-9", gotUserID)
}

func TestUserIDFromContext_Absent(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)
}
