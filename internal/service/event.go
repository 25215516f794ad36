package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/event-planner/internal/apperror"
	"github.com/sakif/event-planner/internal/authz"
	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/repository"
)

// EventInput carries the caller-supplied fields of an event.
type EventInput struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	Public      bool
	Tags        []string
}

// EventService implements the event lifecycle: listing, creation, updates
// and deletion by the organizer, and joining as a participant.
type EventService struct {
	events repository.EventRepository
	notify Notifier
	logger *slog.Logger
}

func NewEventService(events repository.EventRepository, notify Notifier, logger *slog.Logger) *EventService {
	return &EventService{
		events: events,
		notify: notify,
		logger: logger,
	}
}

// List returns all events, newest first.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	return s.events.ListEvents(ctx)
}

// Get returns a single event with its organizer and participants loaded.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	return s.events.GetEventByID(ctx, id)
}

// Create stores a new event organized by the given user.
func (s *EventService) Create(ctx context.Context, organizer *model.User, in EventInput) (*model.Event, error) {
	if err := validateEvent(in); err != nil {
		return nil, err
	}

	event := &model.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Location:    in.Location,
		Public:      in.Public,
		Tags:        in.Tags,
		OrganizerID: organizer.ID,
	}
	if err := s.events.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	event.Organizer = organizer

	s.logger.Info("event created",
		slog.String("eventID", event.ID),
		slog.String("organizerID", organizer.ID),
	)

	return event, nil
}

func validateEvent(in EventInput) error {
	fields := map[string]string{}

	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title is required"
	}
	if !in.EndTime.IsZero() && !in.StartTime.IsZero() && in.EndTime.Before(in.StartTime) {
		fields["endTime"] = "endTime must not be before startTime"
	}

	if len(fields) > 0 {
		return apperror.ValidationFields(fields)
	}
	return nil
}

// Update replaces the event's fields. Only the organizer may update; the
// existence check runs first so a missing event reports NotFound rather
// than Forbidden.
func (s *EventService) Update(ctx context.Context, identity *model.User, id string, in EventInput) (*model.Event, error) {
	event, err := s.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(identity, event); err != nil {
		return nil, err
	}
	if err := validateEvent(in); err != nil {
		return nil, err
	}

	event.Title = strings.TrimSpace(in.Title)
	event.Description = in.Description
	event.StartTime = in.StartTime
	event.EndTime = in.EndTime
	event.Location = in.Location
	event.Public = in.Public
	event.Tags = in.Tags

	if err := s.events.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// Delete removes the event. Only the organizer may delete.
func (s *EventService) Delete(ctx context.Context, identity *model.User, id string) error {
	event, err := s.events.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwner(identity, event); err != nil {
		return err
	}

	if err := s.events.DeleteEvent(ctx, id); err != nil {
		return err
	}

	s.logger.Info("event deleted",
		slog.String("eventID", id),
		slog.String("organizerID", identity.ID),
	)

	return nil
}

// Participate registers the user as a participant and notifies the
// organizer. Joining an event twice is a no-op.
func (s *EventService) Participate(ctx context.Context, identity *model.User, id string) (*model.Event, error) {
	event, err := s.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.events.AddParticipant(ctx, id, identity.ID); err != nil {
		return nil, err
	}

	if event.OrganizerID != identity.ID {
		s.notify.Notify(event.OrganizerID,
			fmt.Sprintf("%s is participating in %q", identity.Username, event.Title))
	}

	// Re-read so the response carries the updated participant list.
	return s.events.GetEventByID(ctx, id)
}
