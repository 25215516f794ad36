package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/event-planner/internal/apperror"
	"github.com/sakif/event-planner/internal/auth"
	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/repository"
)

const (
	// MaxUsernameLength bounds display names so they fit every surface
	// that renders them.
	MaxUsernameLength = 20

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)

// AuthService implements signup, login, and token refresh.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// TokenPair is what a successful login hands back: a short-lived access
// token and a longer-lived refresh token.
type TokenPair struct {
	Access  string
	Refresh string
}

// Signup validates the registration fields, rejects duplicate emails and
// usernames, and stores the new account with a hashed password. Validation
// failures for multiple fields are reported together.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validateSignup(username, email, password); err != nil {
		return nil, err
	}

	// Friendly pre-checks; the UNIQUE constraints in the store remain the
	// authoritative enforcement against concurrent signups.
	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

func validateSignup(username, email, password string) error {
	fields := map[string]string{}

	switch {
	case username == "":
		fields["username"] = "username is required"
	case len(username) > MaxUsernameLength:
		fields["username"] = fmt.Sprintf("username must be at most %d characters", MaxUsernameLength)
	}

	switch {
	case email == "":
		fields["email"] = "email is required"
	default:
		if _, err := mail.ParseAddress(email); err != nil {
			fields["email"] = "email is not a valid address"
		}
	}

	switch {
	case password == "":
		fields["password"] = "password is required"
	case len(password) < MinPasswordLength:
		fields["password"] = fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}

	if len(fields) > 0 {
		return apperror.ValidationFields(fields)
	}
	return nil
}

func (s *AuthService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return apperror.Conflict("email", "email already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return apperror.Conflict("username", "username already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	return nil
}

// Login checks the credentials and issues a token pair. An unknown email
// and a wrong password produce the same error so a caller cannot probe
// which addresses have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.InvalidCredentials()
		}
		return nil, nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", slog.String("userID", user.ID))
		return nil, nil, apperror.InvalidCredentials()
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return user, pair, nil
}

func (s *AuthService) issuePair(userID string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token itself is not rotated; it stays usable until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Verify(refreshToken, auth.TokenRefresh)
	if err != nil {
		return "", apperror.Unauthorized("invalid refresh token")
	}

	// The subject must still exist; a token for a deleted account is dead.
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized("invalid refresh token")
		}
		return "", err
	}

	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return "", fmt.Errorf("issuing access token: %w", err)
	}

	return access, nil
}
