package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/foundly/foundly-server/internal/api/respond"
	"github.com/foundly/foundly-server/internal/auth"
	"github.com/foundly/foundly-server/internal/services"
)

type NotificationHandler struct {
	svc        *services.NotificationService
	authorizer auth.Authorizer
}

func NewNotificationHandler(svc *services.NotificationService, authorizer auth.Authorizer) *NotificationHandler {
	return &NotificationHandler{svc: svc, authorizer: authorizer}
}

// List GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	list := h.svc.List
	if r.URL.Query().Get("unread") == "true" {
		list = h.svc.ListUnread
	}
	ns, err := list(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"notifications": ns, "count": len(ns)})
}

// UnreadCount GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	n, err := h.svc.UnreadCount(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]int{"unread": n})
}

// MarkRead POST /api/notifications/{notificationId}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(r.Context(), mux.Vars(r)["notificationId"], caller.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkAllRead(r.Context(), caller.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete DELETE /api/notifications/{notificationId}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["notificationId"], caller.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll DELETE /api/notifications
func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(h.authorizer, w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteAll(r.Context(), caller.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
