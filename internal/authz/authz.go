// Package authz holds the authorization predicates resource services apply
// after authentication: ownership and event participation. They are pure
// functions of (identity, resource) — no store access, no HTTP.
//
// Callers must check resource existence first: a missing resource is 404 for
// everyone; only once existence is confirmed is ownership evaluated, so a
// 403 always means "exists, but not yours".
package authz

import (
	"github.com/sakif/event-planner/internal/apperror"
	"github.com/sakif/event-planner/internal/model"
)

// Owned is anything with a single owning user: an Event (organizer) or a
// Post (author). One predicate covers both instead of per-resource checks.
type Owned interface {
	OwnerID() string
}

// IsOwner reports whether identity owns the resource.
func IsOwner(identity *model.User, resource Owned) bool {
	return identity != nil && identity.ID == resource.OwnerID()
}

// RequireOwner returns a Forbidden error unless identity owns the resource.
func RequireOwner(identity *model.User, resource Owned) error {
	if !IsOwner(identity, resource) {
		return apperror.Forbidden("you do not have permission to modify this resource")
	}
	return nil
}

// IsParticipant reports whether identity is among the event's participants.
// The event must have been loaded with its participants.
func IsParticipant(identity *model.User, event *model.Event) bool {
	return identity != nil && event.HasParticipant(identity.ID)
}

// RequireParticipant returns a Forbidden error unless identity participates
// in the event. Required before a post may be created against it.
func RequireParticipant(identity *model.User, event *model.Event) error {
	if !IsParticipant(identity, event) {
		return apperror.Forbidden("you are not participating in this event")
	}
	return nil
}
