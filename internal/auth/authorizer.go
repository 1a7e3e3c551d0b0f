// Package auth resolves API keys to user records. Token issuance and session
// management are outside this service; handlers only need to know who is
// calling.
package auth

import (
	"context"
	"errors"

	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/store"
)

// ErrUnauthorized is returned for missing or unknown API keys.
var ErrUnauthorized = errors.New("unauthorized")

// Authorizer validates an API key and returns the calling user.
type Authorizer interface {
	Authorize(ctx context.Context, apiKey string) (*model.User, error)
}

// StoreAuthorizer looks keys up in the user store.
type StoreAuthorizer struct {
	store store.Store
}

func NewStoreAuthorizer(s store.Store) *StoreAuthorizer {
	return &StoreAuthorizer{store: s}
}

func (a *StoreAuthorizer) Authorize(ctx context.Context, apiKey string) (*model.User, error) {
	if apiKey == "" {
		return nil, ErrUnauthorized
	}
	u, err := a.store.Users().GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}
