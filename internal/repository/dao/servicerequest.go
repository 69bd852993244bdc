package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrServiceOfferNotFound   = errors.New("service offer not found")
	ErrServiceRequestNotFound = errors.New("service request not found")
	ErrStaleServiceRequest    = errors.New("service request status changed concurrently")
)

type ServiceOffer struct {
	ID              string `gorm:"primaryKey"`
	ProviderID      string `gorm:"not null;index"`
	Title           string `gorm:"not null"`
	TimeCreditValue int    `gorm:"not null"`
	Active          bool   `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ServiceOffer) TableName() string {
	return "service_offers"
}

type ServiceRequest struct {
	ID              string `gorm:"primaryKey"`
	ServiceID       string `gorm:"not null;index"`
	ServiceTitle    string `gorm:"not null"`
	RequesterID     string `gorm:"not null;index"`
	ProviderID      string `gorm:"not null;index"`
	TimeCreditValue int    `gorm:"not null"`
	Status          string `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

type ServiceRequestDAO struct {
	db *gorm.DB
}

func NewServiceRequestDAO(db *gorm.DB) *ServiceRequestDAO {
	return &ServiceRequestDAO{
		db: db,
	}
}

func (d *ServiceRequestDAO) FindOfferByID(ctx context.Context, id string) (ServiceOffer, error) {
	var offer ServiceOffer

	result := d.db.WithContext(ctx).First(&offer, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ServiceOffer{}, ErrServiceOfferNotFound
		}

		return ServiceOffer{}, result.Error
	}

	return offer, nil
}

func (d *ServiceRequestDAO) Insert(ctx context.Context, request ServiceRequest) (ServiceRequest, error) {
	result := d.db.WithContext(ctx).Create(&request)
	if result.Error != nil {
		return ServiceRequest{}, result.Error
	}

	return request, nil
}

func (d *ServiceRequestDAO) FindByID(ctx context.Context, id string) (ServiceRequest, error) {
	var request ServiceRequest

	result := d.db.WithContext(ctx).First(&request, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ServiceRequest{}, ErrServiceRequestNotFound
		}

		return ServiceRequest{}, result.Error
	}

	return request, nil
}

// UpdateStatusGuarded is the conditional status write shared by respond and
// complete. Zero rows affected means a concurrent caller moved the request
// first.
func (d *ServiceRequestDAO) UpdateStatusGuarded(ctx context.Context, id, fromStatus, toStatus string) error {
	result := d.db.WithContext(ctx).
		Model(&ServiceRequest{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrStaleServiceRequest
	}

	return nil
}
