package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/foundly/foundly-server/internal/api/respond"
	"github.com/foundly/foundly-server/internal/api/validate"
	"github.com/foundly/foundly-server/internal/auth"
	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/services"
)

type ItemHandler struct {
	svc        *services.ItemService
	authorizer auth.Authorizer
}

func NewItemHandler(svc *services.ItemService, authorizer auth.Authorizer) *ItemHandler {
	return &ItemHandler{svc: svc, authorizer: authorizer}
}

// ReportLost POST /api/items/lost
func (h *ItemHandler) ReportLost(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	var in struct {
		Name        string   `json:"name"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
		Location    string   `json:"location"`
		LostDate    string   `json:"lostDate"`
		ImageURLs   []string `json:"imageUrls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	lostDate, err := validate.Date("lostDate", in.LostDate)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	item, matched, err := h.svc.ReportLost(r.Context(), &model.LostItem{
		UserID:      caller.UserID,
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Location:    in.Location,
		LostDate:    lostDate,
		ImageURLs:   in.ImageURLs,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"item":          item,
		"strongMatches": matched,
	})
}

// ReportFound POST /api/items/found
func (h *ItemHandler) ReportFound(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	var in struct {
		Name        string   `json:"name"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
		Location    string   `json:"location"`
		FoundDate   string   `json:"foundDate"`
		ImageURLs   []string `json:"imageUrls"`
		Question1   string   `json:"question1"`
		Question2   string   `json:"question2"`
		Answer1     string   `json:"answer1"`
		Answer2     string   `json:"answer2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	foundDate, err := validate.Date("foundDate", in.FoundDate)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	item, matched, err := h.svc.ReportFound(r.Context(), &model.FoundItem{
		UserID:        caller.UserID,
		Name:          in.Name,
		Category:      in.Category,
		Description:   in.Description,
		Location:      in.Location,
		FoundDate:     foundDate,
		ImageURLs:     in.ImageURLs,
		Question1:     in.Question1,
		Question2:     in.Question2,
		Answer1Secret: in.Answer1,
		Answer2Secret: in.Answer2,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"item":          item,
		"strongMatches": matched,
	})
}

// ListLost GET /api/items/lost
func (h *ItemHandler) ListLost(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	items, total, err := h.svc.ListOpenLost(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
	})
}

// ListFound GET /api/items/found
// Only items past their privacy window appear here.
func (h *ItemHandler) ListFound(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	items, total, err := h.svc.ListPublicFound(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
	})
}

// GetLost GET /api/items/lost/{itemId}
func (h *ItemHandler) GetLost(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetLost(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, item)
}

// GetFound GET /api/items/found/{itemId}
// Items still inside their privacy window are visible to their finder only.
func (h *ItemHandler) GetFound(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetFound(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !item.IsPublic {
		caller := optionalCaller(h.authorizer, r)
		if caller == nil || caller.UserID != item.UserID {
			respond.WriteNotFound(w, "not found")
			return
		}
	}
	respond.WriteJSON(w, http.StatusOK, item)
}

// UpdateLost PATCH /api/items/lost/{itemId}
func (h *ItemHandler) UpdateLost(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	var in struct {
		Description *string `json:"description"`
		Location    *string `json:"location"`
		LostDate    *string `json:"lostDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	patch := model.LostItemPatch{Description: in.Description, Location: in.Location}
	if in.LostDate != nil {
		ts, err := validate.Date("lostDate", *in.LostDate)
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		patch.LostDate = &ts
	}
	if err := h.svc.UpdateLost(r.Context(), mux.Vars(r)["itemId"], caller.UserID, patch); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFound PATCH /api/items/found/{itemId}
func (h *ItemHandler) UpdateFound(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	var in struct {
		Description *string `json:"description"`
		Location    *string `json:"location"`
		FoundDate   *string `json:"foundDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	patch := model.FoundItemPatch{Description: in.Description, Location: in.Location}
	if in.FoundDate != nil {
		ts, err := validate.Date("foundDate", *in.FoundDate)
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		patch.FoundDate = &ts
	}
	if err := h.svc.UpdateFound(r.Context(), mux.Vars(r)["itemId"], caller.UserID, patch); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteLost DELETE /api/items/lost/{itemId}
func (h *ItemHandler) DeleteLost(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteLost(r.Context(), mux.Vars(r)["itemId"], caller.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFound DELETE /api/items/found/{itemId}
func (h *ItemHandler) DeleteFound(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteFound(r.Context(), mux.Vars(r)["itemId"], caller.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyLost GET /api/me/lost-items
func (h *ItemHandler) MyLost(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	items, err := h.svc.MyLostItems(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

// MyFound GET /api/me/found-items
func (h *ItemHandler) MyFound(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	items, err := h.svc.MyFoundItems(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

func listQuery(r *http.Request) (model.ListQuery, error) {
	q := model.ListQuery{
		Name:     r.URL.Query().Get("name"),
		Category: r.URL.Query().Get("category"),
		Location: r.URL.Query().Get("location"),
	}
	if v := r.URL.Query().Get("dateFrom"); v != "" {
		ts, err := validate.Date("dateFrom", v)
		if err != nil {
			return q, err
		}
		q.DateFrom = &ts
	}
	if v := r.URL.Query().Get("dateTo"); v != "" {
		ts, err := validate.Date("dateTo", v)
		if err != nil {
			return q, err
		}
		// Inclusive end of day for bare dates.
		end := ts.Add(24*time.Hour - time.Nanosecond)
		q.DateTo = &end
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, errInvalidPage
		}
		q.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, errInvalidPage
		}
		q.Offset = n
	}
	return q, nil
}

var errInvalidPage = errors.New("limit and offset must be non-negative integers")
