package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/event-planner/internal/service"
)

// UserHandler exposes profile management, the friend list, and the
// notification feed. All routes require authentication.
type UserHandler struct {
	users         *service.UserService
	notifications *service.NotificationService
	logger        *slog.Logger
}

func NewUserHandler(users *service.UserService, notifications *service.NotificationService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

// HandleGet returns another user's profile.
//
// HTTP: GET /api/users/{id} (authenticated)
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type profileUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleUpdate applies a partial update to the caller's own profile.
//
// HTTP: PATCH /api/user (authenticated)
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, service.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes the caller's account and everything attached to it.
//
// HTTP: DELETE /api/user (authenticated)
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteAccount(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListFriends returns the caller's friends.
//
// HTTP: GET /api/user/friends (authenticated)
func (h *UserHandler) HandleListFriends(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	friends, err := h.users.Friends(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, friends)
}

type addFriendRequest struct {
	FriendID string `json:"friendId"`
}

// HandleAddFriend records a mutual friendship with another user.
//
// HTTP: POST /api/user/friends (authenticated)
func (h *UserHandler) HandleAddFriend(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req addFriendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.AddFriend(r.Context(), user, req.FriendID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "friend added"})
}

// HandleRemoveFriend dissolves a friendship.
//
// HTTP: DELETE /api/user/friends/{id} (authenticated)
func (h *UserHandler) HandleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.users.RemoveFriend(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListNotifications returns the caller's notifications, newest
// first.
//
// HTTP: GET /api/user/notifications (authenticated)
func (h *UserHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	notifications, err := h.notifications.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}
