package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sakif/event-planner/internal/auth"
	"github.com/sakif/event-planner/internal/metrics"
	"github.com/sakif/event-planner/internal/repository/sqlite"
	"github.com/sakif/event-planner/internal/service"
)

const testSecret = "test-secret-0123456789abcdef"

// newTestAPI wires the handlers onto a router against a fresh in-memory
// store, mirroring the production route layout.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceWithCost(4)

	collector := metrics.NewCollector(prometheus.NewRegistry())

	notificationService := service.NewNotificationService(db, logger)
	authService := service.NewAuthService(db, tokens, passwords, logger)
	userService := service.NewUserService(db, db, passwords, notificationService, logger)
	eventService := service.NewEventService(db, notificationService, logger)
	postService := service.NewPostService(db, db, logger)

	authHandler := NewAuthHandler(authService, collector, logger)
	userHandler := NewUserHandler(userService, notificationService, logger)
	eventHandler := NewEventHandler(eventService, postService, logger)
	postHandler := NewPostHandler(postService, logger)

	requireAuth := auth.RequireAuth(tokens, db)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
			r.Get("/refresh", authHandler.HandleRefresh)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.HandleLogout)
				r.Get("/current", authHandler.HandleCurrent)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.HandleList)
			r.Get("/{id}", eventHandler.HandleGet)
			r.Get("/{id}/posts", eventHandler.HandleListPosts)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", eventHandler.HandleCreate)
				r.Put("/{id}", eventHandler.HandleUpdate)
				r.Delete("/{id}", eventHandler.HandleDelete)
				r.Post("/{id}/participate", eventHandler.HandleParticipate)
				r.Post("/{id}/posts", eventHandler.HandleCreatePost)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/{id}", postHandler.HandleUpdate)
			r.Delete("/{id}", postHandler.HandleDelete)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(requireAuth)
			r.Patch("/", userHandler.HandleUpdate)
			r.Delete("/", userHandler.HandleDelete)
			r.Get("/friends", userHandler.HandleListFriends)
			r.Post("/friends", userHandler.HandleAddFriend)
			r.Delete("/friends/{id}", userHandler.HandleRemoveFriend)
			r.Get("/notifications", userHandler.HandleListNotifications)
		})

		r.With(requireAuth).Get("/users/{id}", userHandler.HandleGet)
	})

	return router
}

// apiRequest drives one request through the router. An empty token means
// anonymous; cookies, if any, ride along.
func apiRequest(t *testing.T, api http.Handler, method, path string, body any, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// signupAndLogin registers an account and returns its access token.
func signupAndLogin(t *testing.T, api http.Handler, username, email string) string {
	t.Helper()

	rec := apiRequest(t, api, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": "a long password",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = apiRequest(t, api, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "a long password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Access string `json:"access"`
	}
	decodeBody(t, rec, &body)
	require.NotEmpty(t, body.Access)
	return body.Access
}
