package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sakif/event-planner/internal/model"
)

// UserResolver is the slice of the user store the middleware needs: resolve
// a token subject to a live account. Satisfied by repository.UserRepository.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the authenticated identity.
type contextKey string

const userKey contextKey = "user"

// RequireAuth enforces authentication on protected routes.
//
// It extracts the bearer token from the Authorization header, verifies it as
// an access token, resolves the subject to a User, and stores the User in
// the request context. Missing or malformed header, bad/expired/wrong-kind
// token, or an unknown subject (account deleted after issuance) all reject
// the request with 401 before any handler runs.
//
// The middleware has no side effects beyond attaching the identity; it never
// writes to the store.
func RequireAuth(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			userID, err := tokens.Verify(tokenStr, TokenAccess)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user from the request context.
// Returns (nil, false) on anonymous requests. Downstream handlers read the
// identity but must not mutate it.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns false for a missing or malformed header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	return BearerToken(header)
}

// BearerToken splits an Authorization header value into its bearer token.
// The scheme match is case-insensitive, as header schemes are.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": "valid authentication required",
	})
}
