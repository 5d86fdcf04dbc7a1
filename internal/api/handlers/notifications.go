package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/api/middleware"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/service"
)

// NotificationsHandler handles notification endpoints.
type NotificationsHandler struct {
	notifications *service.NotificationService
	log           zerolog.Logger
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(notifications *service.NotificationService, log zerolog.Logger) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications, log: log}
}

// ListNotifications handles GET /api/notifications. With unread=true only unread
// notifications are returned, limited to 3 unless limit is given.
func (h *NotificationsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	var (
		list []repository.Notification
		err  error
	)
	if r.URL.Query().Get("unread") == "true" {
		list, err = h.notifications.ListUnread(r.Context(), limit)
	} else {
		list, err = h.notifications.List(r.Context(), limit)
	}
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list notifications")
		return
	}
	if list == nil {
		list = []repository.Notification{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"notifications": list, "count": len(list)})
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.setRead(w, r, true)
}

// MarkUnread handles POST /api/notifications/{id}/unread.
func (h *NotificationsHandler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	h.setRead(w, r, false)
}

func (h *NotificationsHandler) setRead(w http.ResponseWriter, r *http.Request, read bool) {
	id, err := pathID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}
	if read {
		err = h.notifications.MarkRead(r.Context(), id)
	} else {
		err = h.notifications.MarkUnread(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update notification")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": id, "isRead": read})
}

// Generate handles POST /api/notifications/generate.
func (h *NotificationsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	stored, err := h.notifications.GenerateAlertNotifications(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to generate notifications")
		return
	}
	if stored == nil {
		stored = []repository.Notification{}
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{"notifications": stored, "count": len(stored)})
}
