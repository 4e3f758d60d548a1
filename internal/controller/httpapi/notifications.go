package httpapi

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid_request", "unread must be a boolean")
			return
		}
		unreadOnly = parsed
	}

	actor := actorFromContext(r.Context())
	notifications, err := s.notifications.List(r.Context(), actor, unreadOnly)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	unread, err := s.notifications.UnreadCount(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if notifications == nil {
		notifications = []*model.Notification{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := pathID(r, "notificationId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_notification_id")
		return
	}

	if err := s.notifications.MarkRead(r.Context(), notificationID, actorFromContext(r.Context())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
