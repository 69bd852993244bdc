package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrTokenNotFound    = errors.New("delivery token not found")
	ErrTokenAlreadyUsed = errors.New("delivery token already used")
	ErrTokenExpired     = errors.New("delivery token expired")
	ErrDuplicateCode    = errors.New("delivery code already exists")
)

type DeliveryToken struct {
	ID   string `gorm:"primaryKey"`
	Code string `gorm:"unique;not null"`

	ProductID    string `gorm:"not null;index"`
	ProductTitle string `gorm:"not null"`
	SellerID     string `gorm:"not null;index"`
	BuyerID      string `gorm:"not null;index"`

	TransactionID string

	Status    string `gorm:"not null"`
	Used      bool   `gorm:"not null;default:false"`
	UsedAt    *time.Time
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null"`
}

func (DeliveryToken) TableName() string {
	return "delivery_tokens"
}

type DeliveryTokenDAO struct {
	db *gorm.DB
}

func NewDeliveryTokenDAO(db *gorm.DB) *DeliveryTokenDAO {
	return &DeliveryTokenDAO{
		db: db,
	}
}

func (d *DeliveryTokenDAO) Insert(ctx context.Context, token DeliveryToken) (DeliveryToken, error) {
	result := d.db.WithContext(ctx).Create(&token)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_delivery_tokens_code"`) {
			return DeliveryToken{}, ErrDuplicateCode
		}

		return DeliveryToken{}, result.Error
	}

	return token, nil
}

func (d *DeliveryTokenDAO) FindByID(ctx context.Context, id string) (DeliveryToken, error) {
	var token DeliveryToken

	result := d.db.WithContext(ctx).First(&token, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return DeliveryToken{}, ErrTokenNotFound
		}

		return DeliveryToken{}, result.Error
	}

	return token, nil
}

func (d *DeliveryTokenDAO) FindByUserID(ctx context.Context, userID string) ([]DeliveryToken, error) {
	var tokens []DeliveryToken

	result := d.db.WithContext(ctx).
		Where("seller_id = ? OR buyer_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&tokens)
	if result.Error != nil {
		return nil, result.Error
	}

	return tokens, nil
}

// MarkUsed consumes the token in a single conditional write. The used flag
// and expiry are both checked inside the same statement, so a second redeem
// and a redeem racing past expiry both lose here.
func (d *DeliveryTokenDAO) MarkUsed(ctx context.Context, id string, now time.Time) error {
	result := d.db.WithContext(ctx).
		Model(&DeliveryToken{}).
		Where("id = ? AND used = ? AND expires_at > ?", id, false, now).
		Updates(map[string]interface{}{
			"used":    true,
			"used_at": now,
			"status":  "Completed",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		token, err := d.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if token.Used {
			return ErrTokenAlreadyUsed
		}
		return ErrTokenExpired
	}

	return nil
}
