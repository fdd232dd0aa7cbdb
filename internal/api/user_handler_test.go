package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/mocks"
)

func patchJSON(t *testing.T, target string, payload any, principal *domain.User) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("PATCH", target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		req = req.WithContext(shared.WithPrincipal(req.Context(), principal))
	}
	return req
}

func TestGetMe(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	user := seedUser(t, users)
	handler := NewUserHandler(users)

	req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	req = req.WithContext(shared.WithPrincipal(req.Context(), user))
	rec := httptest.NewRecorder()

	handler.GetMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.Email)
	// Credential material never serializes.
	assert.NotContains(t, rec.Body.String(), "hashed:")
}

func TestGetMeUnauthenticated(t *testing.T) {
	t.Parallel()

	handler := NewUserHandler(mocks.NewMockUserStore())

	rec := httptest.NewRecorder()
	handler.GetMe(rec, httptest.NewRequest("GET", "/api/v1/users/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMe(t *testing.T) {
	t.Parallel()

	t.Run("profile fields update", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		user := seedUser(t, users)
		handler := NewUserHandler(users)

		rec := httptest.NewRecorder()
		handler.UpdateMe(rec, patchJSON(t, "/api/v1/users/updateMe", map[string]any{
			"name":  " Renamed User ",
			"photo": "new-photo.jpg",
		}, user))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Renamed User", user.Name)
		assert.Equal(t, "new-photo.jpg", user.Photo)
	})

	t.Run("password field redirected", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		user := seedUser(t, users)
		handler := NewUserHandler(users)

		rec := httptest.NewRecorder()
		handler.UpdateMe(rec, patchJSON(t, "/api/v1/users/updateMe", map[string]any{
			"password":         "newpassword123",
			"password_confirm": "newpassword123",
		}, user))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please use /updateMyPassword")
		assert.Equal(t, "hashed:password123", user.HashedPassword)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		user := seedUser(t, users)
		handler := NewUserHandler(users)

		rec := httptest.NewRecorder()
		handler.UpdateMe(rec, patchJSON(t, "/api/v1/users/updateMe", map[string]any{
			"email": "not-an-email",
		}, user))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteMe(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	user := seedUser(t, users)
	handler := NewUserHandler(users)

	req := httptest.NewRequest("DELETE", "/api/v1/users/deleteMe", nil)
	req = req.WithContext(shared.WithPrincipal(req.Context(), user))
	rec := httptest.NewRecorder()

	handler.DeleteMe(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, user.Active)

	// Soft-deleted users disappear from reads but keep their record.
	_, err := users.GetByEmail(context.Background(), user.Email)
	assert.Error(t, err)
	assert.Contains(t, users.Users, user.Email)
}

func TestCreateUserRedirectsToSignup(t *testing.T) {
	t.Parallel()

	handler := NewUserHandler(mocks.NewMockUserStore())

	rec := httptest.NewRecorder()
	handler.CreateUser(rec, httptest.NewRequest("POST", "/api/v1/users", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please use /signup instead")
}

func TestAdminUpdateUser(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	user := seedUser(t, users)
	handler := NewUserHandler(users)

	req := patchJSON(t, "/api/v1/users/"+user.ID.String(), map[string]any{
		"role":   "guide",
		"active": false,
	}, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", user.ID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.UpdateUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RoleGuide, user.Role)
	assert.False(t, user.Active)
}

func TestAdminUpdateUserInvalidID(t *testing.T) {
	t.Parallel()

	handler := NewUserHandler(mocks.NewMockUserStore())

	req := patchJSON(t, "/api/v1/users/not-a-uuid", map[string]any{"name": "X"}, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.UpdateUser(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
