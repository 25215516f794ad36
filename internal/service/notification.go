// Package service contains the business logic layer: validation, the
// credential and token lifecycle, authorization checks, and orchestration
// between repositories. Handlers stay HTTP-only, repositories stay SQL-only.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/repository"
)

// Notifier is the fire-and-forget notification sink consumed by the
// resource services. Implementations must never block the caller and must
// never propagate delivery failures back to it.
type Notifier interface {
	Notify(userID, message string)
}

// NotificationService records notifications and lists them per user.
type NotificationService struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

var _ Notifier = (*NotificationService)(nil)

func NewNotificationService(repo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: logger,
	}
}

// Notify records a notification for the user without making the caller
// wait: the write happens on its own goroutine with its own deadline, and a
// failure is logged, never returned. A failed notification must not abort
// the operation that triggered it.
func (s *NotificationService) Notify(userID, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.deliver(ctx, userID, message)
	}()
}

func (s *NotificationService) deliver(ctx context.Context, userID, message string) {
	n := &model.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("notification delivery failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Debug("notification recorded",
		slog.String("userID", userID),
		slog.String("notificationID", n.ID),
	)
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]model.Notification, error) {
	return s.repo.ListUserNotifications(ctx, userID)
}
