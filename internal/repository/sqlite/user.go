package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/event-planner/internal/apperror"
	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/repository"
)

// compile-time checks that *DB implements the repository interfaces
var (
	_ repository.UserRepository   = (*DB)(nil)
	_ repository.FriendRepository = (*DB)(nil)
)

// CreateUser inserts a new user. The UNIQUE constraints on username and
// email are the authoritative uniqueness enforcement: when a concurrent
// signup wins the race past the service-level pre-check, the constraint
// rejection surfaces here and is translated to the same field-keyed
// Conflict error the pre-check would have produced.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if conflict, ok := conflictFromUnique(err); ok {
			return conflict
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

func (db *DB) getUser(ctx context.Context, where, arg string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at, updated_at
		 FROM users WHERE `+where+` = ?`,
		arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user by %s %q: %w", where, arg, err)
	}

	return &u, nil
}

// GetUserByID retrieves a user by internal id. Returns apperror.ErrNotFound
// if no such user exists.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, "email", email)
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, "username", username)
}

// UpdateUser persists profile changes. Unique violations on username/email
// are translated to field-keyed Conflict errors, same as CreateUser.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if conflict, ok := conflictFromUnique(err); ok {
			return conflict
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// DeleteUser removes the user; friendships, events, posts, and
// notifications go with it via the foreign keys' ON DELETE CASCADE.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// AddFriend inserts both directed rows of the symmetric friendship in one
// transaction, so a half-written friendship can never be observed.
func (db *DB) AddFriend(ctx context.Context, userID, friendID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning friendship tx: %w", err)
	}
	defer tx.Rollback()

	for _, pair := range [][2]string{{userID, friendID}, {friendID, userID}} {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO friends (user1_id, user2_id) VALUES (?, ?)`,
			pair[0], pair[1],
		); err != nil {
			return fmt.Errorf("sqlite: adding friendship %s->%s: %w", pair[0], pair[1], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing friendship: %w", err)
	}
	return nil
}

// ListFriends returns the users on the far side of the caller's friendship
// rows.
func (db *DB) ListFriends(ctx context.Context, userID string) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.password_hash, u.created_at, u.updated_at
		 FROM friends f
		 JOIN users u ON u.id = f.user2_id
		 WHERE f.user1_id = ?
		 ORDER BY u.username`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing friends of %s: %w", userID, err)
	}
	defer rows.Close()

	friends := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning friend row: %w", err)
		}
		friends = append(friends, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating friend rows: %w", err)
	}

	return friends, nil
}

// RemoveFriend deletes both directed rows of the friendship.
func (db *DB) RemoveFriend(ctx context.Context, userID, friendID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM friends
		 WHERE (user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)`,
		userID, friendID, friendID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing friendship %s<->%s: %w", userID, friendID, err)
	}
	return nil
}
