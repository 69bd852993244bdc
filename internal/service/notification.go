package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swapnest/swapnest-api/internal/domain"
)

// Notifier delivers fire-and-forget alerts. Implementations must never let a
// delivery failure reach the caller of the engine.
type Notifier interface {
	Notify(ctx context.Context, userID string, kind domain.NotificationKind, title, message, actionRef string)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification domain.Notification) (domain.Notification, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Notification, error)
}

// NotificationService records alerts for later pickup by the notification
// fan-out (out of scope here). Failures are logged and swallowed; the
// engine's own consistency never depends on a notification landing.
type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{
		repo: repo,
	}
}

func (s *NotificationService) Notify(ctx context.Context, userID string, kind domain.NotificationKind, title, message, actionRef string) {
	_, err := s.repo.Create(ctx, domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		ActionRef: actionRef,
		CreatedAt: time.Now(),
	})
	if err != nil {
		zap.L().Warn("dropping notification",
			zap.String("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(fmt.Errorf("s.repo.Create -> %w", err)))
	}
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	notifications, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return notifications, nil
}
