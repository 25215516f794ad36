package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/event-planner/internal/model"
)

// newTestDB opens a fresh in-memory database, destroyed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// seedUser inserts a user and returns it.
func seedUser(t *testing.T, db *DB, username, email string) *model.User {
	t.Helper()

	u := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$fakehashfakehashfakehashfakehashfakehashfakehashfake",
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

// seedEvent inserts an event organized by the given user.
func seedEvent(t *testing.T, db *DB, organizerID, title string) *model.Event {
	t.Helper()

	now := time.Now()
	e := &model.Event{
		Title:       title,
		Description: "a test event",
		StartTime:   now.Add(24 * time.Hour),
		EndTime:     now.Add(26 * time.Hour),
		Location:    "somewhere",
		Public:      true,
		Tags:        []string{"test"},
		OrganizerID: organizerID,
	}
	if err := db.CreateEvent(context.Background(), e); err != nil {
		t.Fatalf("CreateEvent(%s): %v", title, err)
	}
	return e
}
