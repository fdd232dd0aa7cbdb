package api

import (
	"errors"
	"net/http"

	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/service/auth"
	"github.com/trekora/trek-api/internal/store"
)

// mapError classifies an error into an HTTP status, a client-safe
// message, and whether the error is operational. Operational errors
// surface their message verbatim; everything else is replaced with a
// generic message and logged. One policy, no environment switch.
func mapError(err error) (status int, message string, operational bool) {
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Error(), true

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest, err.Error(), true

	case errors.Is(err, store.ErrPageNotFound):
		return http.StatusNotFound, "This page does not exist", true

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "No document found with that ID", true

	case errors.Is(err, store.ErrDuplicateReview):
		return http.StatusConflict, "You have already reviewed this tour", true

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, "Duplicate field value. Please use another value", true

	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, "Your token has expired. Please log in again.", true

	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token. Please log in again.", true

	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "You do not have permission to perform this action.", true

	default:
		return http.StatusInternalServerError, "Something went very wrong!", false
	}
}

// HandleAPIError writes the mapped error response. Non-operational
// errors are logged with the underlying cause; the client only ever
// sees the safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, message, operational := mapError(err)
	if operational {
		shared.RespondWithError(w, r, status, message)
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
