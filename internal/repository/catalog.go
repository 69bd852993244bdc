package repository

import (
	"context"
	"fmt"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/repository/dao"
)

var (
	ErrProductNotFound = dao.ErrProductNotFound
	ErrAlreadyReserved = dao.ErrAlreadyReserved
	ErrNotReserved     = dao.ErrNotReserved
	ErrNoEligibleItems = dao.ErrNoEligibleItems
)

type CatalogDAO interface {
	FindByID(ctx context.Context, id string) (dao.Product, error)
	Reserve(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
	FinalizeSale(ctx context.Context, id, newOwnerID string) error
	FindRandomEligibleDonation(ctx context.Context, excludeOwnerID string) (dao.Product, error)
}

// CatalogRepository is the engine's view of the catalog service: product
// lookups plus the reservation/sold flags. Nothing else in the catalog is
// touched from here.
type CatalogRepository struct {
	dao CatalogDAO
}

func NewCatalogRepository(dao CatalogDAO) *CatalogRepository {
	return &CatalogRepository{
		dao: dao,
	}
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CatalogRepository) Reserve(ctx context.Context, id string) error {
	if err := r.dao.Reserve(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Reserve -> %w", err)
	}

	return nil
}

func (r *CatalogRepository) Release(ctx context.Context, id string) error {
	if err := r.dao.Release(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Release -> %w", err)
	}

	return nil
}

func (r *CatalogRepository) FinalizeSale(ctx context.Context, id, newOwnerID string) error {
	if err := r.dao.FinalizeSale(ctx, id, newOwnerID); err != nil {
		return fmt.Errorf("r.dao.FinalizeSale -> %w", err)
	}

	return nil
}

func (r *CatalogRepository) FindRandomEligibleDonation(ctx context.Context, excludeOwnerID string) (domain.Product, error) {
	found, err := r.dao.FindRandomEligibleDonation(ctx, excludeOwnerID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindRandomEligibleDonation -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CatalogRepository) daoToDomain(p dao.Product) domain.Product {
	return domain.Product{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Kind:      domain.TransactionKind(p.Kind),
		Title:     p.Title,
		Thumbnail: p.Thumbnail,
		Active:    p.Active,
		Sold:      p.Sold,
		Reserved:  p.Reserved,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
