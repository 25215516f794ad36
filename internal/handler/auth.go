package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/event-planner/internal/auth"
	"github.com/sakif/event-planner/internal/metrics"
	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/service"
)

// refreshCookieName is where the refresh token lives between requests. The
// cookie is HttpOnly so script cannot read it, and SameSite=None + Secure
// so a frontend served from another origin can still send it.
const refreshCookieName = "refresh"

// AuthHandler exposes the credential endpoints: signup, login, refresh,
// logout, and the current-identity probe.
type AuthHandler struct {
	auth      *service.AuthService
	collector *metrics.Collector
	logger    *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, collector *metrics.Collector, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      authService,
		collector: collector,
		logger:    logger,
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.collector.RecordSignup()
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access string `json:"access"`
}

// HandleLogin checks the credentials and starts a session: the access
// token goes in the response body, the refresh token in an HttpOnly
// cookie.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	_, pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.collector.RecordLogin(false)
		writeError(w, err)
		return
	}

	h.collector.RecordLogin(true)
	http.SetCookie(w, refreshCookie(pair.Refresh))
	writeJSON(w, http.StatusOK, loginResponse{Access: pair.Access})
}

// HandleRefresh mints a new access token from the refresh token, read from
// the Authorization header or, failing that, the refresh cookie.
//
// HTTP: GET /api/auth/refresh
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := refreshTokenFrom(r)
	if !ok {
		writeError(w, errors.New("no refresh token provided"))
		return
	}

	access, err := h.auth.Refresh(r.Context(), refreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	h.collector.RecordRefresh()
	writeJSON(w, http.StatusOK, loginResponse{Access: access})
}

// HandleLogout ends the session by clearing the refresh cookie. Tokens
// already issued stay valid until they expire on their own; there is no
// server-side revocation list.
//
// HTTP: POST /api/auth/logout (authenticated)
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		h.logger.Info("user logged out", slog.String("userID", user.ID))
	}

	expired := refreshCookie("")
	expired.MaxAge = -1
	http.SetCookie(w, expired)

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleCurrent returns the authenticated user's profile.
//
// HTTP: GET /api/auth/current (authenticated)
func (h *AuthHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func refreshCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(auth.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// refreshTokenFrom looks for the refresh token in the Authorization header
// first, then the cookie. Scheme matching is the same case-insensitive
// parse the session middleware uses.
func refreshTokenFrom(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := auth.BearerToken(header); ok {
			return token, true
		}
	}
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func unauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: "valid authentication required",
	})
}

// currentUser pulls the authenticated identity set by the auth middleware.
// Routes using it must be mounted behind RequireAuth.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		unauthenticated(w)
	}
	return user, ok
}
