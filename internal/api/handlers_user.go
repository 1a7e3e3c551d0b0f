package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/foundly/foundly-server/internal/api/respond"
	"github.com/foundly/foundly-server/internal/api/validate"
	"github.com/foundly/foundly-server/internal/auth"
	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/services"
)

type UserHandler struct {
	svc        *services.UserService
	authorizer auth.Authorizer
}

func NewUserHandler(svc *services.UserService, authorizer auth.Authorizer) *UserHandler {
	return &UserHandler{svc: svc, authorizer: authorizer}
}

// CreateUser POST /api/users
// The minted API key is returned once, alongside the user record.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Username(in.Username); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Email(in.Email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	u := &model.User{Username: in.Username, Email: in.Email, Phone: in.Phone}
	out, err := h.svc.CreateUser(r.Context(), u)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"user":   out,
		"apiKey": out.APIKey,
	})
}

// GetUser GET /api/users/{userId}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(h.authorizer, w, r); !ok {
		return
	}
	u, err := h.svc.GetUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
