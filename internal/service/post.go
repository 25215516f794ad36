package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/event-planner/internal/apperror"
	"github.com/sakif/event-planner/internal/authz"
	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/repository"
)

// PostService implements posts on an event's wall. Writing requires being
// a participant of the event; editing and deleting require authorship.
type PostService struct {
	posts  repository.PostRepository
	events repository.EventRepository
	logger *slog.Logger
}

func NewPostService(posts repository.PostRepository, events repository.EventRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		events: events,
		logger: logger,
	}
}

// ListByEvent returns the event's posts in posting order.
func (s *PostService) ListByEvent(ctx context.Context, eventID string) ([]model.Post, error) {
	if _, err := s.events.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.posts.ListEventPosts(ctx, eventID)
}

// Create adds a post to the event's wall. The author must be a participant
// of the event; organizing it does not grant posting by itself.
func (s *PostService) Create(ctx context.Context, identity *model.User, eventID, content string) (*model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	// Nobody posts without joining first, the organizer included.
	if err := authz.RequireParticipant(identity, event); err != nil {
		return nil, err
	}

	post := &model.Post{
		Content: content,
		EventID: eventID,
		UserID:  identity.ID,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	post.AuthorName = identity.Username

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("eventID", eventID),
		slog.String("userID", identity.ID),
	)

	return post, nil
}

// Update rewrites a post's content. Only the author may update; existence
// is checked before authorship.
func (s *PostService) Update(ctx context.Context, identity *model.User, id, content string) (*model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(identity, post); err != nil {
		return nil, err
	}

	post.Content = content
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Delete removes a post. Only the author may delete.
func (s *PostService) Delete(ctx context.Context, identity *model.User, id string) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwner(identity, post); err != nil {
		return err
	}

	return s.posts.DeletePost(ctx, id)
}
