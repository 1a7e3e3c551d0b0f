package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/foundly/foundly-server/internal/api/respond"
	"github.com/foundly/foundly-server/internal/auth"
	"github.com/foundly/foundly-server/internal/services"
)

type MatchHandler struct {
	matches    *services.MatchService
	claims     *services.ClaimService
	authorizer auth.Authorizer
}

func NewMatchHandler(matches *services.MatchService, claims *services.ClaimService, authorizer auth.Authorizer) *MatchHandler {
	return &MatchHandler{matches: matches, claims: claims, authorizer: authorizer}
}

// MyMatches GET /api/me/matches
func (h *MatchHandler) MyMatches(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	out, err := h.matches.MyMatches(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"matches": out, "count": len(out)})
}

// CreatePublicClaim POST /api/claims/public
// Seeds a manual match between the caller's open lost report and a found
// item. The outcome status is match_created, match_exists or rejected.
func (h *MatchHandler) CreatePublicClaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	var in struct {
		FoundItemID string `json:"foundItemId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if in.FoundItemID == "" {
		respond.WriteBadRequest(w, "foundItemId is required")
		return
	}
	res, err := h.matches.CreatePublicClaim(r.Context(), caller.UserID, in.FoundItemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// VerifyClaim POST /api/matches/{matchId}/verify
// Runs the security quiz. Approval is the only path that discloses the
// finder's contact record.
func (h *MatchHandler) VerifyClaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	var in struct {
		Answer1 string `json:"answer1"`
		Answer2 string `json:"answer2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.claims.VerifyClaim(r.Context(), mux.Vars(r)["matchId"], caller.UserID, in.Answer1, in.Answer2)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// MyClaims GET /api/me/claims
func (h *MatchHandler) MyClaims(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	out, err := h.claims.MyClaims(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"claims": out, "count": len(out)})
}

// ReceivedClaims GET /api/me/claims/received
func (h *MatchHandler) ReceivedClaims(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	out, err := h.claims.ReceivedClaims(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"claims": out, "count": len(out)})
}

// GetClaim GET /api/claims/{claimId}
func (h *MatchHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	out, err := h.claims.GetClaim(r.Context(), mux.Vars(r)["claimId"], caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
