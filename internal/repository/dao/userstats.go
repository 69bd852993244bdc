package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrStatsNotFound       = errors.New("user stats not found")
	ErrInsufficientCredits = errors.New("insufficient time credits")
	ErrInsufficientPoints  = errors.New("insufficient points")
)

type UserStats struct {
	UserID      string `gorm:"primaryKey"`
	UserName    string `gorm:"not null"`
	Points      int    `gorm:"not null;default:0"`
	TimeCredits int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (UserStats) TableName() string {
	return "user_stats"
}

type CreditLedgerEntry struct {
	ID         string `gorm:"primaryKey"`
	FromUserID string `gorm:"not null;index"`
	ToUserID   string `gorm:"not null;index"`
	Amount     int    `gorm:"not null"`
	Reason     string `gorm:"not null"`
	CreatedAt  time.Time
}

func (CreditLedgerEntry) TableName() string {
	return "credit_ledger_entries"
}

type UserStatsDAO struct {
	db *gorm.DB
}

func NewUserStatsDAO(db *gorm.DB) *UserStatsDAO {
	return &UserStatsDAO{
		db: db,
	}
}

func (d *UserStatsDAO) FindByUserID(ctx context.Context, userID string) (UserStats, error) {
	var stats UserStats

	result := d.db.WithContext(ctx).First(&stats, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return UserStats{}, ErrStatsNotFound
		}

		return UserStats{}, result.Error
	}

	return stats, nil
}

// DebitCredits subtracts amount only while the balance covers it. The balance
// check rides in the same statement, so a concurrent debit cannot push the
// balance negative.
func (d *UserStatsDAO) DebitCredits(ctx context.Context, userID string, amount int) error {
	result := d.db.WithContext(ctx).
		Model(&UserStats{}).
		Where("user_id = ? AND time_credits >= ?", userID, amount).
		Updates(map[string]interface{}{
			"time_credits": gorm.Expr("time_credits - ?", amount),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByUserID(ctx, userID); err != nil {
			return err
		}
		return ErrInsufficientCredits
	}

	return nil
}

func (d *UserStatsDAO) CreditCredits(ctx context.Context, userID string, amount int) error {
	result := d.db.WithContext(ctx).
		Model(&UserStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"time_credits": gorm.Expr("time_credits + ?", amount),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatsNotFound
	}

	return nil
}

// AddPoints adjusts the gamification-points balance by delta, any sign.
func (d *UserStatsDAO) AddPoints(ctx context.Context, userID string, delta int) error {
	result := d.db.WithContext(ctx).
		Model(&UserStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"points":     gorm.Expr("points + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatsNotFound
	}

	return nil
}

// DebitPoints subtracts points only while the balance covers the cost.
func (d *UserStatsDAO) DebitPoints(ctx context.Context, userID string, amount int) error {
	result := d.db.WithContext(ctx).
		Model(&UserStats{}).
		Where("user_id = ? AND points >= ?", userID, amount).
		Updates(map[string]interface{}{
			"points":     gorm.Expr("points - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByUserID(ctx, userID); err != nil {
			return err
		}
		return ErrInsufficientPoints
	}

	return nil
}

func (d *UserStatsDAO) InsertLedgerEntry(ctx context.Context, entry CreditLedgerEntry) (CreditLedgerEntry, error) {
	result := d.db.WithContext(ctx).Create(&entry)
	if result.Error != nil {
		return CreditLedgerEntry{}, result.Error
	}

	return entry, nil
}
