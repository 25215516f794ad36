package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/event-planner/internal/service"
)

// EventHandler exposes the event endpoints, including the posts on an
// event's wall.
type EventHandler struct {
	events *service.EventService
	posts  *service.PostService
	logger *slog.Logger
}

func NewEventHandler(events *service.EventService, posts *service.PostService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		events: events,
		posts:  posts,
		logger: logger,
	}
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Location    string    `json:"location"`
	Public      bool      `json:"public"`
	Tags        []string  `json:"tags"`
}

func (req eventRequest) input() service.EventInput {
	return service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Public:      req.Public,
		Tags:        req.Tags,
	}
}

// HandleList returns all events.
//
// HTTP: GET /api/events
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// HandleGet returns one event with organizer and participants.
//
// HTTP: GET /api/events/{id}
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// HandleCreate creates an event organized by the caller.
//
// HTTP: POST /api/events (authenticated)
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Create(r.Context(), user, req.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// HandleUpdate replaces an event's fields. Organizer only.
//
// HTTP: PUT /api/events/{id} (authenticated)
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Update(r.Context(), user, chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// HandleDelete removes an event. Organizer only.
//
// HTTP: DELETE /api/events/{id} (authenticated)
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.events.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleParticipate joins the caller to an event.
//
// HTTP: POST /api/events/{id}/participate (authenticated)
func (h *EventHandler) HandleParticipate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	event, err := h.events.Participate(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// HandleListPosts returns the posts on an event's wall.
//
// HTTP: GET /api/events/{id}/posts
func (h *EventHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListByEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

type postRequest struct {
	Content string `json:"content"`
}

// HandleCreatePost adds a post to an event's wall. Organizer or
// participant only.
//
// HTTP: POST /api/events/{id}/posts (authenticated)
func (h *EventHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), user, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}
