package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes the two token flavours. The kind is embedded in
// the signed claims so an access token can never be replayed where a refresh
// token is expected, and vice versa.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Token lifetimes. Access tokens are short-lived and carried in the
// Authorization header; refresh tokens live in an HttpOnly cookie and are
// only good for minting new access tokens.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 12 * time.Hour
)

const issuer = "event-planner"

// Verification failure kinds. Most callers collapse all three to a 401, but
// they are distinct so tests and logs can tell them apart.
var (
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenInvalid   = errors.New("auth: token invalid")
	ErrTokenMalformed = errors.New("auth: token malformed")
)

// TokenService signs and verifies the stateless bearer tokens. Validity is
// entirely determined by the HMAC signature and the embedded expiry — no
// store lookup, no server-side session table. The tradeoff: logout cannot
// invalidate an already-issued access token before its natural expiry.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret. The secret
// should be at least 32 bytes of random data in production, e.g.
// JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: the standard registered claims (sub = user id,
// exp, iat, iss) plus the token kind.
type claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// IssueAccess signs a new access token for the given user id.
func (s *TokenService) IssueAccess(userID string) (string, error) {
	return s.Issue(userID, TokenAccess, AccessTokenTTL)
}

// IssueRefresh signs a new refresh token for the given user id.
func (s *TokenService) IssueRefresh(userID string) (string, error) {
	return s.Issue(userID, TokenRefresh, RefreshTokenTTL)
}

// Issue signs a token of the given kind with a custom lifetime. The expiry
// is absolute wall-clock time computed at issuance. Exported so tests can
// mint already-expired tokens with a negative ttl.
func (s *TokenService) Issue(userID string, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", kind, err)
	}

	return signed, nil
}

// Verify parses and verifies a JWT string, requiring the given kind.
// Returns the subject (user id) on success.
//
// Failure modes:
//   - ErrTokenExpired   — signature fine, expiry in the past
//   - ErrTokenMalformed — the string cannot be parsed as a JWT at all
//   - ErrTokenInvalid   — bad signature, wrong issuer, wrong algorithm,
//     missing subject, or kind mismatch
//
// Restricting the accepted methods to HS256 closes the algorithm-confusion
// hole where a token signed with "none" would otherwise slip through.
func (s *TokenService) Verify(tokenStr string, kind TokenKind) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrTokenMalformed
		default:
			return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
		}
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}
	if c.Kind != kind {
		return "", fmt.Errorf("%w: %s token where %s expected", ErrTokenInvalid, c.Kind, kind)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrTokenInvalid)
	}

	return c.Subject, nil
}
