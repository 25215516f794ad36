package model

import "time"

// Notification is a message recorded for a user by the notification sink.
// Delivery is fire-and-forget: resource handlers never wait on it.
type Notification struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Message   string    `json:"message"   db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
