package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/store"
)

// UserService handles user registration and lookup. Session issuance and
// password handling live outside this service; the API key minted here is
// what request handlers authenticate with.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService { return &UserService{store: s} }

func (s *UserService) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	switch {
	case u.Username == "":
		return nil, errors.Wrap(model.ErrValidation, "username is required")
	case u.Email == "":
		return nil, errors.Wrap(model.ErrValidation, "email is required")
	}
	if u.APIKey == "" {
		u.APIKey = uuid.New().String()
	}
	return s.store.Users().Create(ctx, u)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}
