package model

import "time"

// Event represents a planned event owned by its organizer.
//
// Organizer and Participants are populated by the repository on reads that
// request them (list, get by id); they are nil on writes. Tags are stored as
// a JSON array in a single TEXT column.
type Event struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	StartTime   time.Time `json:"startTime"   db:"start_time"`
	EndTime     time.Time `json:"endTime"     db:"end_time"`
	Location    string    `json:"location"    db:"location"`
	Public      bool      `json:"public"      db:"public"`
	Tags        []string  `json:"tags"        db:"tags"`
	OrganizerID string    `json:"organizerId" db:"organizer_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	Organizer    *User  `json:"organizer,omitempty"`
	Participants []User `json:"participants,omitempty"`
}

// OwnerID identifies the organizer for ownership checks.
func (e *Event) OwnerID() string { return e.OrganizerID }

// HasParticipant reports whether the given user id is among the loaded
// participants. The Participants slice must have been populated by the
// repository for this to be meaningful.
func (e *Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
