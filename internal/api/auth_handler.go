package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/config"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/mailer"
	"github.com/trekora/trek-api/internal/platform/logger"
	"github.com/trekora/trek-api/internal/service/auth"
	"github.com/trekora/trek-api/internal/store"
)

// sessionCookie is the name of the HTTP-only session cookie.
const sessionCookie = "jwt"

// AuthHandler handles signup, login and the password lifecycle.
type AuthHandler struct {
	users    store.UserStore
	tokens   auth.TokenService
	hasher   auth.PasswordHasher
	mail     mailer.Mailer
	cfg      config.AuthConfig
	validate *validator.Validate
}

// NewAuthHandler creates an AuthHandler with the given dependencies.
func NewAuthHandler(
	users store.UserStore,
	tokens auth.TokenService,
	hasher auth.PasswordHasher,
	mail mailer.Mailer,
	cfg config.AuthConfig,
) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		mail:     mail,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// sendToken issues a session token for the user and writes it both in
// the envelope and as an HTTP-only cookie, together with the user record.
func (h *AuthHandler) sendToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, expiresAt, err := h.tokens.Generate(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	shared.RespondWithJSON(w, r, status, shared.Envelope{
		Status: "success",
		Token:  token,
		Data:   map[string]any{"user": user},
	})
}

// Signup handles POST /users/signup. Only profile and credential
// fields are accepted; the role is always "user".
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := domain.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if user.HashedPassword, err = h.hasher.Hash(user.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create user", err)
		return
	}
	user.Password = ""

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already exists")
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusCreated, user)
}

// Login handles POST /users/login. Unknown email and wrong password
// return the identical generic message to prevent account enumeration.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	if err := h.hasher.Compare(user.HashedPassword, req.Password); err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusOK, user)
}

// ForgotPassword handles POST /users/forgotPassword. Only the hash of
// the reset token is stored; the raw token goes out by email. A mail
// failure rolls the stored fields back.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "There is no user with that email address")
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	raw, hash, expires, err := auth.NewResetToken()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to start password reset", err)
		return
	}

	user.PasswordResetToken = hash
	user.PasswordResetExpires = expires
	if err := h.users.Update(r.Context(), user); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	body := fmt.Sprintf(
		"Forgot your password? Submit a PATCH request with your new password to /api/v1/users/resetPassword/%s.\n"+
			"If you didn't forget your password, please ignore this email.", raw)

	if err := h.mail.Send(r.Context(), user.Email, "Your password reset token (valid for 10 min)", body); err != nil {
		// Roll back so the half-issued token cannot linger.
		user.PasswordResetToken = ""
		user.PasswordResetExpires = time.Time{}
		if rbErr := h.users.Update(r.Context(), user); rbErr != nil {
			logger.FromContext(r.Context()).Error("failed to roll back reset token",
				"error", rbErr, "user_id", user.ID)
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
			"There was an error sending the email. Try again later", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.Envelope{
		Status:  "success",
		Message: "Token sent to email",
	})
}

// ResetPassword handles PATCH /users/resetPassword/{token}.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	hash := auth.HashResetToken(chi.URLParam(r, "token"))
	user, err := h.users.GetByResetToken(r.Context(), hash)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Token is invalid or has expired")
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	if err := h.applyNewPassword(r, user, req.Password); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusOK, user)
}

// UpdatePassword handles PATCH /users/updateMyPassword for a logged-in
// user; the current password must be verified first.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Principal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			"You are not logged in. Please log in to get access.")
		return
	}

	var req UpdatePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	if err := h.hasher.Compare(user.HashedPassword, req.PasswordCurrent); err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Your current password is wrong")
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	if err := h.applyNewPassword(r, user, req.Password); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusOK, user)
}

// applyNewPassword hashes and persists a new credential, stamping the
// change a second in the past so a token issued in the same second is
// still considered fresh.
func (h *AuthHandler) applyNewPassword(r *http.Request, user *domain.User, password string) error {
	hashed, err := h.hasher.Hash(password)
	if err != nil {
		return err
	}

	user.HashedPassword = hashed
	user.Password = ""
	user.PasswordChangedAt = time.Now().UTC().Add(-time.Second)
	user.PasswordResetToken = ""
	user.PasswordResetExpires = time.Time{}

	return h.users.Update(r.Context(), user)
}

// validationMessage converts a validator error into a client-facing
// message naming the first offending field.
func validationMessage(err error) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		fe := vErrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("Invalid %s: required field", fe.Field())
		case "email":
			return fmt.Sprintf("Invalid %s: invalid email format", fe.Field())
		case "min":
			return fmt.Sprintf("Invalid %s: too short", fe.Field())
		case "max":
			return fmt.Sprintf("Invalid %s: too long", fe.Field())
		case "eqfield":
			return "Passwords are not the same"
		case "oneof":
			return fmt.Sprintf("Invalid %s: invalid value", fe.Field())
		default:
			return fmt.Sprintf("Invalid %s", fe.Field())
		}
	}
	return "Validation error"
}
