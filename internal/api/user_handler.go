package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// UserHandler handles profile self-service and the admin user CRUD.
type UserHandler struct {
	users    store.UserStore
	validate *validator.Validate
}

// NewUserHandler creates a UserHandler with the given dependencies.
func NewUserHandler(users store.UserStore) *UserHandler {
	return &UserHandler{users: users, validate: validator.New()}
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Principal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			"You are not logged in. Please log in to get access.")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, map[string]any{"user": user})
}

// UpdateMe handles PATCH /users/updateMe: name, email and photo only.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Principal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			"You are not logged in. Please log in to get access.")
		return
	}

	var req UpdateMeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.Password != nil || req.PasswordConfirm != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"This route is not for password updates. Please use /updateMyPassword")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Photo != nil {
		user.Photo = *req.Photo
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, map[string]any{"user": user})
}

// DeleteMe handles DELETE /users/deleteMe: a soft delete via the
// active flag; the record is never removed.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Principal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			"You are not logged in. Please log in to get access.")
		return
	}

	if err := h.users.Deactivate(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondNoContent(w)
}

// ListUsers handles GET /users (admin).
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	listAll(w, r, func(ctx context.Context, opts *query.Options) ([]*domain.User, int, error) {
		return h.users.List(ctx, opts)
	})
}

// GetUser handles GET /users/{id} (admin).
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, "id", h.users.GetByID)
}

// CreateUser handles POST /users (admin). User creation goes through
// signup so credentials are always hashed and validated there.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusBadRequest,
		"This route is not for creating users. Please use /signup instead")
}

// UpdateUser handles PATCH /users/{id} (admin). Passwords are never
// updated through this surface.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req AdminUpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Photo != nil {
		user.Photo = *req.Photo
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, map[string]any{"user": user})
}

// DeleteUser handles DELETE /users/{id} (admin): a hard delete.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	deleteOne(w, r, "id", func(ctx context.Context, id uuid.UUID) error {
		return h.users.Delete(ctx, id)
	})
}
