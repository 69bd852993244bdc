package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrAlreadyReserved  = errors.New("product already reserved")
	ErrNotReserved      = errors.New("product not reserved")
	ErrNoEligibleItems  = errors.New("no eligible donated items")
	ErrProductNotActive = errors.New("product not active")
)

type Product struct {
	ID        string `gorm:"primaryKey"`
	OwnerID   string `gorm:"not null;index"`
	Kind      string `gorm:"not null"` // "Sale", "Donation", or "Trade"
	Title     string `gorm:"not null"`
	Thumbnail string
	Active    bool `gorm:"not null;default:true"`
	Sold      bool `gorm:"not null;default:false"`
	Reserved  bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CatalogDAO struct {
	db *gorm.DB
}

func NewCatalogDAO(db *gorm.DB) *CatalogDAO {
	return &CatalogDAO{
		db: db,
	}
}

func (d *CatalogDAO) FindByID(ctx context.Context, id string) (Product, error) {
	var product Product

	result := d.db.WithContext(ctx).First(&product, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

// Reserve flips the reservation flag only when it is currently clear, so two
// concurrent callers cannot both win the lock.
func (d *CatalogDAO) Reserve(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ? AND reserved = ? AND sold = ?", id, false, false).
		Updates(map[string]interface{}{
			"reserved":   true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyReserved
	}

	return nil
}

func (d *CatalogDAO) Release(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ? AND reserved = ?", id, true).
		Updates(map[string]interface{}{
			"reserved":   false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrNotReserved
	}

	return nil
}

// FinalizeSale marks the product sold and clears the reservation. A non-empty
// newOwnerID reassigns ownership (surprise-box redemptions).
func (d *CatalogDAO) FinalizeSale(ctx context.Context, id, newOwnerID string) error {
	updates := map[string]interface{}{
		"sold":       true,
		"reserved":   false,
		"updated_at": time.Now(),
	}
	if newOwnerID != "" {
		updates["owner_id"] = newOwnerID
	}

	result := d.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ? AND sold = ?", id, false).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrProductNotActive
	}

	return nil
}

// FindRandomEligibleDonation picks one unsold, active, unreserved donated
// item not owned by excludeOwnerID, uniformly at random.
func (d *CatalogDAO) FindRandomEligibleDonation(ctx context.Context, excludeOwnerID string) (Product, error) {
	var product Product

	result := d.db.WithContext(ctx).
		Where("kind = ? AND active = ? AND sold = ? AND reserved = ? AND owner_id <> ?",
			"Donation", true, false, false, excludeOwnerID).
		Order("RANDOM()").
		First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrNoEligibleItems
		}

		return Product{}, result.Error
	}

	return product, nil
}
