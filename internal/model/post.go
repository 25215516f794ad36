package model

import "time"

// Post is a message written against an event by one of its participants.
//
// AuthorName is a read-side convenience populated on list queries (join with
// users); it is empty on writes.
type Post struct {
	ID        string    `json:"id"        db:"id"`
	Content   string    `json:"content"   db:"content"`
	EventID   string    `json:"eventId"   db:"event_id"`
	UserID    string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	AuthorName string `json:"authorName,omitempty"`
}

// OwnerID identifies the author for ownership checks.
func (p *Post) OwnerID() string { return p.UserID }
