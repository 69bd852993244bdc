package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrStaleTransaction    = errors.New("transaction status changed concurrently")
)

type Transaction struct {
	ID string `gorm:"primaryKey"`

	SellerID   string `gorm:"not null;index"`
	SellerName string `gorm:"not null"`
	BuyerID    string `gorm:"not null;index"`
	BuyerName  string `gorm:"not null"`

	ProductID        string `gorm:"not null;index"`
	ProductTitle     string `gorm:"not null"`
	ProductThumbnail string
	Kind             string `gorm:"not null"` // "Sale", "Donation", or "Trade"

	OfferedProductID    string
	OfferedProductTitle string
	OfferMessage        string

	Status    string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Transaction) TableName() string {
	return "transactions"
}

type TransactionDAO struct {
	db *gorm.DB
}

func NewTransactionDAO(db *gorm.DB) *TransactionDAO {
	return &TransactionDAO{
		db: db,
	}
}

func (d *TransactionDAO) Insert(ctx context.Context, transaction Transaction) (Transaction, error) {
	result := d.db.WithContext(ctx).Create(&transaction)
	if result.Error != nil {
		return Transaction{}, result.Error
	}

	return transaction, nil
}

func (d *TransactionDAO) FindByID(ctx context.Context, id string) (Transaction, error) {
	var transaction Transaction

	result := d.db.WithContext(ctx).First(&transaction, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Transaction{}, ErrTransactionNotFound
		}

		return Transaction{}, result.Error
	}

	return transaction, nil
}

func (d *TransactionDAO) FindByUserID(ctx context.Context, userID string) ([]Transaction, error) {
	var transactions []Transaction

	result := d.db.WithContext(ctx).
		Where("seller_id = ? OR buyer_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

// UpdateStatusGuarded moves a transaction from an expected status to the next
// one in a single conditional write. Zero rows affected means another caller
// got there first; the losing caller must re-read and decide.
func (d *TransactionDAO) UpdateStatusGuarded(ctx context.Context, id, fromStatus, toStatus string) error {
	result := d.db.WithContext(ctx).
		Model(&Transaction{}).
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
		return ErrStaleTransaction
	}

	return nil
}
