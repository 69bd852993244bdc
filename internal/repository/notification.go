package repository

import (
	"context"
	"fmt"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/repository/dao"
)

type NotificationDAO interface {
	Insert(ctx context.Context, notification dao.Notification) (dao.Notification, error)
	FindByUserID(ctx context.Context, userID string) ([]dao.Notification, error)
}

type NotificationRepository struct {
	dao NotificationDAO
}

func NewNotificationRepository(dao NotificationDAO) *NotificationRepository {
	return &NotificationRepository{
		dao: dao,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, notification domain.Notification) (domain.Notification, error) {
	created, err := r.dao.Insert(ctx, dao.Notification{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Kind:      string(notification.Kind),
		Title:     notification.Title,
		Message:   notification.Message,
		ActionRef: notification.ActionRef,
		CreatedAt: notification.CreatedAt,
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *NotificationRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Notification, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	notifications := make([]domain.Notification, len(found))
	for i, n := range found {
		notifications[i] = r.daoToDomain(n)
	}

	return notifications, nil
}

func (r *NotificationRepository) daoToDomain(n dao.Notification) domain.Notification {
	return domain.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Kind:      domain.NotificationKind(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		ActionRef: n.ActionRef,
		CreatedAt: n.CreatedAt,
	}
}
