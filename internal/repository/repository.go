// Package repository declares the store interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/event-planner/internal/model"
)

// UserRepository is the credential store adapter: look up or create a user
// by unique identifier and persist the password hash.
//
// CreateUser and UpdateUser translate the store's unique-constraint
// rejections on username/email into field-keyed apperror.Conflict values —
// that rejection is the authoritative uniqueness enforcement, the callers'
// pre-checks are only a best-effort optimization.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// FriendRepository manages the symmetric friendship relation. AddFriend
// inserts both directed rows in one transaction; RemoveFriend deletes both.
type FriendRepository interface {
	AddFriend(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]model.User, error)
	RemoveFriend(ctx context.Context, userID, friendID string) error
}

// EventRepository persists events and their participant set. GetEventByID
// and ListEvents load the organizer and participants alongside the event.
type EventRepository interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	UpdateEvent(ctx context.Context, event *model.Event) error
	DeleteEvent(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, eventID, userID string) error
}

// PostRepository persists event posts.
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListEventPosts(ctx context.Context, eventID string) ([]model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id string) error
}

// NotificationRepository records and lists per-user notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListUserNotifications(ctx context.Context, userID string) ([]model.Notification, error)
}
