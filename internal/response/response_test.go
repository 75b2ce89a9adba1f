package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "vincula/internal/errors"
)

func TestNewPage_TotalPages(t *testing.T) {
	tests := []struct {
		name          string
		page          int
		size          int
		total         int64
		wantPages     int
		wantFirst     bool
		wantLast      bool
		wantHasNext   bool
		wantHasPrev   bool
	}{
		{"exact multiple", 0, 10, 20, 2, true, false, true, false},
		{"partial last page", 1, 10, 21, 3, false, false, true, true},
		{"final page", 2, 10, 21, 3, false, true, false, true},
		{"empty result", 0, 10, 0, 0, true, true, false, false},
		{"single page", 0, 50, 3, 1, true, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage([]string{}, PageRequest{Page: tt.page, Size: tt.size}, tt.total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantFirst, p.First)
			assert.Equal(t, tt.wantLast, p.Last)
			assert.Equal(t, tt.wantHasNext, p.HasNext)
			assert.Equal(t, tt.wantHasPrev, p.HasPrevious)
		})
	}
}

func TestParsePageRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)

	req, err := ParsePageRequest(r)
	require.NoError(t, err)
	assert.Equal(t, 0, req.Page)
	assert.Equal(t, 20, req.Size)
	assert.Equal(t, 0, req.Offset())
}

func TestParsePageRequest_Valid(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders?page=3&size=25", nil)

	req, err := ParsePageRequest(r)
	require.NoError(t, err)
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 25, req.Size)
	assert.Equal(t, 75, req.Offset())
}

func TestParsePageRequest_Invalid(t *testing.T) {
	for _, q := range []string{"page=-1", "page=abc", "size=0", "size=101", "size=x"} {
		r := httptest.NewRequest(http.MethodGet, "/api/orders?"+q, nil)

		_, err := ParsePageRequest(r)
		require.Error(t, err, q)

		ve, ok := apperrors.IsValidationError(err)
		require.True(t, ok, q)
		assert.NotEmpty(t, ve.Details)
	}
}

func TestFromError_StatusCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NewValidationError("bad"), http.StatusBadRequest},
		{apperrors.NewNotFoundError("order", "id", "x"), http.StatusNotFound},
		{apperrors.NewConflictError("dup"), http.StatusConflict},
		{apperrors.NewUnauthorizedError("no token"), http.StatusUnauthorized},
		{apperrors.NewForbiddenError("nope"), http.StatusForbidden},
		{apperrors.NewDeadlockError("retries"), http.StatusConflict},
		{apperrors.NewInternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/orders/x", nil)

		FromError(w, r, zap.NewNop(), tt.err)
		assert.Equal(t, tt.want, w.Code)

		var env Envelope
		require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
		assert.False(t, env.Status)
		assert.Equal(t, tt.want, env.StatusCode)
		require.NotNil(t, env.Path)
		assert.Equal(t, "/api/orders/x", *env.Path)
	}
}

func TestOK_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)

	OK(w, r, zap.NewNop(), "orders retrieved", []int{1, 2})

	assert.Equal(t, http.StatusOK, w.Code)

	var env Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	assert.True(t, env.Status)
	assert.Equal(t, "orders retrieved", env.Message)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.NotNil(t, env.Data)
	assert.Empty(t, env.Errors)
	assert.False(t, env.Timestamp.IsZero())
}
