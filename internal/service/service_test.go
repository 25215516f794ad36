package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/sakif/event-planner/internal/auth"
	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/repository/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// recordingNotifier captures notifications synchronously so tests can
// assert on them without racing a goroutine.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	userID  string
	message string
}

func (n *recordingNotifier) Notify(userID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{userID: userID, message: message})
}

func (n *recordingNotifier) sent() []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifyCall(nil), n.calls...)
}

// signupUser registers a user through the auth service so the stored
// password hash is real.
func signupUser(t *testing.T, svc *AuthService, username, email string) *model.User {
	t.Helper()

	u, err := svc.Signup(context.Background(), username, email, "correct horse battery")
	if err != nil {
		t.Fatalf("Signup(%s): %v", username, err)
	}
	return u
}

func newTestAuthService(t *testing.T) (*AuthService, *sqlite.DB) {
	t.Helper()

	db := newTestStore(t)
	tokens, err := auth.NewTokenService("test-secret-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceWithCost(4)

	return NewAuthService(db, tokens, passwords, testLogger()), db
}
