package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/event-planner/internal/apperror"
	"github.com/sakif/event-planner/internal/auth"
	"github.com/sakif/event-planner/internal/repository/sqlite"
)

func newTestUserService(t *testing.T) (*UserService, *recordingNotifier, *sqlite.DB) {
	t.Helper()

	db := newTestStore(t)
	notifier := &recordingNotifier{}
	svc := NewUserService(db, db, auth.NewPasswordServiceWithCost(4), notifier, testLogger())
	return svc, notifier, db
}

func TestUpdateProfile_EmptyUpdateRejected(t *testing.T) {
	svc, _, db := newTestUserService(t)
	alice := storeUser(t, db, "alice", "alice@example.com")

	_, err := svc.UpdateProfile(context.Background(), alice.ID, ProfileUpdate{})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("UpdateProfile(empty) error = %v, want ErrValidation", err)
	}
}

func TestUpdateProfile_PartialUpdateKeepsRest(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	alice := storeUser(t, db, "alice", "alice@example.com")

	updated, err := svc.UpdateProfile(ctx, alice.ID, ProfileUpdate{Username: "alicia"})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Username != "alicia" {
		t.Errorf("Username = %q, want alicia", updated.Username)
	}
	if updated.Email != "alice@example.com" {
		t.Errorf("Email changed by partial update: %q", updated.Email)
	}
}

func TestUpdateProfile_RehashesPassword(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	alice := storeUser(t, db, "alice", "alice@example.com")

	_, err := svc.UpdateProfile(ctx, alice.ID, ProfileUpdate{Password: "a new password"})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	stored, _ := db.GetUserByID(ctx, alice.ID)
	if stored.PasswordHash == "a new password" {
		t.Error("new password stored in plaintext")
	}
	if err := auth.NewPasswordServiceWithCost(4).Verify(stored.PasswordHash, "a new password"); err != nil {
		t.Errorf("new password does not verify: %v", err)
	}
}

func TestUpdateProfile_ValidatesFields(t *testing.T) {
	svc, _, db := newTestUserService(t)
	alice := storeUser(t, db, "alice", "alice@example.com")

	tests := []struct {
		name string
		upd  ProfileUpdate
	}{
		{"long username", ProfileUpdate{Username: strings.Repeat("a", MaxUsernameLength+1)}},
		{"bad email", ProfileUpdate{Email: "not-an-email"}},
		{"short password", ProfileUpdate{Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(context.Background(), alice.ID, tt.upd)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("UpdateProfile() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAddFriend_NotifiesAndLists(t *testing.T) {
	svc, notifier, db := newTestUserService(t)
	ctx := context.Background()

	alice := storeUser(t, db, "alice", "alice@example.com")
	bob := storeUser(t, db, "bob", "bob@example.com")

	if err := svc.AddFriend(ctx, alice, bob.ID); err != nil {
		t.Fatalf("AddFriend() error = %v", err)
	}

	sent := notifier.sent()
	if len(sent) != 1 || sent[0].userID != bob.ID {
		t.Fatalf("notifications = %v, want one to bob", sent)
	}
	if !strings.Contains(sent[0].message, "alice") {
		t.Errorf("notification message = %q, want adder's name in it", sent[0].message)
	}

	friends, err := svc.Friends(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Friends() error = %v", err)
	}
	if len(friends) != 1 || friends[0].ID != alice.ID {
		t.Errorf("bob's friends = %v, want [alice]", friends)
	}
}

func TestAddFriend_SelfRejected(t *testing.T) {
	svc, _, db := newTestUserService(t)
	alice := storeUser(t, db, "alice", "alice@example.com")

	err := svc.AddFriend(context.Background(), alice, alice.ID)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("AddFriend(self) error = %v, want ErrValidation", err)
	}
}

func TestAddFriend_UnknownUserNotFound(t *testing.T) {
	svc, notifier, db := newTestUserService(t)
	alice := storeUser(t, db, "alice", "alice@example.com")

	err := svc.AddFriend(context.Background(), alice, "no-such-user")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("AddFriend(unknown) error = %v, want ErrNotFound", err)
	}
	if len(notifier.sent()) != 0 {
		t.Error("failed AddFriend still sent a notification")
	}
}

func TestDeleteAccount_Removes(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	alice := storeUser(t, db, "alice", "alice@example.com")

	if err := svc.DeleteAccount(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := svc.Get(ctx, alice.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestNotificationService_DeliverAndList(t *testing.T) {
	db := newTestStore(t)
	svc := NewNotificationService(db, testLogger())
	ctx := context.Background()

	alice := storeUser(t, db, "alice", "alice@example.com")

	svc.deliver(ctx, alice.ID, "hello")
	svc.deliver(ctx, alice.ID, "again")

	ns, err := svc.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("ListForUser() = %d entries, want 2", len(ns))
	}
}
