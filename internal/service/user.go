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

// ProfileUpdate carries the optional fields of a profile update. Empty
// fields stay unchanged.
type ProfileUpdate struct {
	Username string
	Email    string
	Password string
}

func (u ProfileUpdate) empty() bool {
	return u.Username == "" && u.Email == "" && u.Password == ""
}

// UserService implements profile management and the friend list.
type UserService struct {
	users     repository.UserRepository
	friends   repository.FriendRepository
	passwords *auth.PasswordService
	notify    Notifier
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, friends repository.FriendRepository, passwords *auth.PasswordService, notify Notifier, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		friends:   friends,
		passwords: passwords,
		notify:    notify,
		logger:    logger,
	}
}

// Get returns a user's profile.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// UpdateProfile applies a partial update to the caller's own profile. A
// new password is re-hashed before storing.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*model.User, error) {
	if upd.empty() {
		return nil, apperror.ValidationFailed("details", "no update data provided")
	}
	if err := validateProfileUpdate(upd); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Username != "" {
		user.Username = strings.TrimSpace(upd.Username)
	}
	if upd.Email != "" {
		user.Email = strings.TrimSpace(upd.Email)
	}
	if upd.Password != "" {
		hash, err := s.passwords.Hash(upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", userID))

	return user, nil
}

func validateProfileUpdate(upd ProfileUpdate) error {
	fields := map[string]string{}

	if upd.Username != "" && len(strings.TrimSpace(upd.Username)) > MaxUsernameLength {
		fields["username"] = fmt.Sprintf("username must be at most %d characters", MaxUsernameLength)
	}
	if upd.Email != "" {
		if _, err := mail.ParseAddress(strings.TrimSpace(upd.Email)); err != nil {
			fields["email"] = "email is not a valid address"
		}
	}
	if upd.Password != "" && len(upd.Password) < MinPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}

	if len(fields) > 0 {
		return apperror.ValidationFields(fields)
	}
	return nil
}

// DeleteAccount removes the caller's account. Events they organized,
// their posts, friendships, and notifications go with it.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("account deleted", slog.String("userID", userID))

	return nil
}

// AddFriend records a mutual friendship and notifies the other user.
func (s *UserService) AddFriend(ctx context.Context, identity *model.User, friendID string) error {
	if friendID == identity.ID {
		return apperror.ValidationFailed("friendId", "cannot add yourself as a friend")
	}

	if _, err := s.users.GetUserByID(ctx, friendID); err != nil {
		return err
	}

	if err := s.friends.AddFriend(ctx, identity.ID, friendID); err != nil {
		return err
	}

	s.notify.Notify(friendID, fmt.Sprintf("%s added you as a friend", identity.Username))

	return nil
}

// Friends returns the caller's friends.
func (s *UserService) Friends(ctx context.Context, userID string) ([]model.User, error) {
	return s.friends.ListFriends(ctx, userID)
}

// RemoveFriend dissolves a friendship in both directions. Removing a
// non-friend is a no-op.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.friends.RemoveFriend(ctx, userID, friendID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}
