package handlers

import (
	"net/http"

	"farrier-backend/internal/middleware"
	"farrier-backend/internal/services"
	"farrier-backend/internal/ws"
	"farrier-backend/pkg/utils"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	hub           *ws.Hub
}

func NewNotificationHandler(notifications *services.NotificationService, hub *ws.Hub) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub}
}

// List returns the caller's notifications. With ?horse=Name, mention emphasis
// is re-rendered so only that horse's name stays bold.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := pageParams(r)
	notifications, err := h.notifications.List(r.Context(), userID, limit, offset)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load notifications")
		return
	}

	if horse := r.URL.Query().Get("horse"); horse != "" {
		for _, n := range notifications {
			n.Message = services.BoldOnlyHorse(n.Message, horse)
		}
	}
	utils.RespondJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	count, err := h.notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to count notifications")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}
	if err := h.notifications.MarkRead(r.Context(), id, userID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Notification read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.notifications.MarkAllRead(r.Context(), userID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update notifications")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "All notifications read"})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}
	if err := h.notifications.Delete(r.Context(), id, userID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to delete notification")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}

// Socket upgrades to a websocket that receives notification pushes
func (h *NotificationHandler) Socket(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.hub.Serve(w, r, userID)
}
