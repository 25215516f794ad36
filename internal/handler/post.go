package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/event-planner/internal/service"
)

// PostHandler exposes the author-only operations on individual posts.
// Creation and listing live under the event routes.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		logger: logger,
	}
}

// HandleUpdate rewrites a post's content. Author only.
//
// HTTP: PUT /api/posts/{id} (authenticated)
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Update(r.Context(), user, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes a post. Author only.
//
// HTTP: DELETE /api/posts/{id} (authenticated)
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
