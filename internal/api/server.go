package api

import (
	"errors"
	"net/http"

	"github.com/foundly/foundly-server/internal/api/respond"
	"github.com/foundly/foundly-server/internal/auth"
	"github.com/foundly/foundly-server/internal/model"
)

// requireCaller authenticates the request and writes the 401 itself when the
// key is missing or unknown. Handlers bail out when ok is false.
func requireCaller(authorizer auth.Authorizer, w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, err.Error())
		return nil, false
	}
	u, err := authorizer.Authorize(r.Context(), apiKey)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			respond.WriteUnauthorized(w, "invalid API key")
		} else {
			respond.WriteInternalError(w, err.Error())
		}
		return nil, false
	}
	return u, true
}

// optionalCaller resolves the caller when credentials are present, without
// failing the request when they are not.
func optionalCaller(authorizer auth.Authorizer, r *http.Request) *model.User {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		return nil
	}
	u, err := authorizer.Authorize(r.Context(), apiKey)
	if err != nil {
		return nil
	}
	return u
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "not found")
	case errors.Is(err, model.ErrConflict):
		respond.WriteError(w, http.StatusConflict, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
