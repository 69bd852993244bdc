package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Notification struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"not null;index"`
	Kind      string `gorm:"not null"`
	Title     string `gorm:"not null"`
	Message   string `gorm:"not null"`
	ActionRef string `gorm:"not null"`
	CreatedAt time.Time
}

type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{
		db: db,
	}
}

func (d *NotificationDAO) Insert(ctx context.Context, notification Notification) (Notification, error) {
	result := d.db.WithContext(ctx).Create(&notification)
	if result.Error != nil {
		return Notification{}, result.Error
	}

	return notification, nil
}

func (d *NotificationDAO) FindByUserID(ctx context.Context, userID string) ([]Notification, error) {
	var notifications []Notification

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications)
	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}
