// Package api implements the HTTP handlers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
)

// The helpers below are the generic resource handlers: each maps one
// HTTP verb onto a store operation supplied as a closure, so every
// resource shares the same envelope shaping, query translation and
// error mapping.

// pathUUID extracts and parses a UUID path parameter.
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(param, "is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(param, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// listAll translates the request query string, runs the listing, and
// writes the collection envelope with its result count.
func listAll[T any](
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, opts *query.Options) ([]T, int, error),
) {
	opts, err := query.Parse(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	items, _, err := list(r.Context(), opts)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithList(w, r, http.StatusOK, shapeAll(items, opts.Fields), len(items))
}

// getOne fetches a single record by its path ID.
func getOne[T any](
	w http.ResponseWriter,
	r *http.Request,
	idParam string,
	fetch func(ctx context.Context, id uuid.UUID) (T, error),
) {
	id, err := pathUUID(r, idParam)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	item, err := fetch(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, item)
}

// deleteOne removes a single record by its path ID and returns no content.
func deleteOne(
	w http.ResponseWriter,
	r *http.Request,
	idParam string,
	remove func(ctx context.Context, id uuid.UUID) error,
) {
	id, err := pathUUID(r, idParam)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := remove(r.Context(), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondNoContent(w)
}

// shapeAll applies the requested field projection to every item.
func shapeAll[T any](items []T, fields []string) any {
	if len(fields) == 0 {
		return items
	}
	shaped := make([]any, 0, len(items))
	for _, item := range items {
		shaped = append(shaped, shapeDocument(item, fields))
	}
	return shaped
}

// shapeDocument projects a document onto the requested fields by way
// of its JSON form, so fields that never serialize (password hash,
// reset token) can never be selected back in. Unknown names are
// ignored rather than rejected.
func shapeDocument(item any, fields []string) any {
	raw, err := json.Marshal(item)
	if err != nil {
		return item
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return item
	}

	shaped := make(map[string]json.RawMessage, len(fields))
	for _, field := range fields {
		if v, ok := doc[field]; ok {
			shaped[field] = v
		}
	}
	return shaped
}
