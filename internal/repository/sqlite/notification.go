package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/repository"
)

var _ repository.NotificationRepository = (*DB)(nil)

// CreateNotification records a notification for a user.
func (db *DB) CreateNotification(ctx context.Context, n *model.Notification) error {
	n.ID = xid.New().String()
	n.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, message, created_at)
		 VALUES (?, ?, ?, ?)`,
		n.ID,
		n.UserID,
		n.Message,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting notification for %s: %w", n.UserID, err)
	}

	return nil
}

// ListUserNotifications returns a user's notifications, newest first.
func (db *DB) ListUserNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, message, created_at
		 FROM notifications
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notifications of %s: %w", userID, err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notification rows: %w", err)
	}

	return notifications, nil
}
