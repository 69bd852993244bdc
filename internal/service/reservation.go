package service

import (
	"context"
	"fmt"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/repository"
)

var (
	ErrProductNotFound = repository.ErrProductNotFound
	ErrAlreadyReserved = repository.ErrAlreadyReserved
	ErrNotReserved     = repository.ErrNotReserved
)

type CatalogRepository interface {
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	Reserve(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
	FinalizeSale(ctx context.Context, id, newOwnerID string) error
	FindRandomEligibleDonation(ctx context.Context, excludeOwnerID string) (domain.Product, error)
}

// ReservationService is the only component allowed to flip a product's
// reservation and sold flags.
type ReservationService struct {
	catalog CatalogRepository
}

func NewReservationService(catalog CatalogRepository) *ReservationService {
	return &ReservationService{
		catalog: catalog,
	}
}

func (s *ReservationService) Reserve(ctx context.Context, productID string) error {
	if err := s.catalog.Reserve(ctx, productID); err != nil {
		return fmt.Errorf("s.catalog.Reserve -> %w", err)
	}

	return nil
}

func (s *ReservationService) Release(ctx context.Context, productID string) error {
	if err := s.catalog.Release(ctx, productID); err != nil {
		return fmt.Errorf("s.catalog.Release -> %w", err)
	}

	return nil
}

// ReservePair locks both sides of a trade. If the second lock fails the
// first is released before returning, so a half-locked pair never escapes.
func (s *ReservationService) ReservePair(ctx context.Context, productID, offeredProductID string) error {
	if err := s.catalog.Reserve(ctx, productID); err != nil {
		return fmt.Errorf("s.catalog.Reserve -> %w", err)
	}

	if err := s.catalog.Reserve(ctx, offeredProductID); err != nil {
		if releaseErr := s.catalog.Release(ctx, productID); releaseErr != nil {
			return fmt.Errorf("s.catalog.Release (unwinding %v) -> %w", err, releaseErr)
		}
		return fmt.Errorf("s.catalog.Reserve offered -> %w", err)
	}

	return nil
}

func (s *ReservationService) ReleasePair(ctx context.Context, productID, offeredProductID string) error {
	if err := s.catalog.Release(ctx, productID); err != nil {
		return fmt.Errorf("s.catalog.Release -> %w", err)
	}

	if offeredProductID != "" {
		if err := s.catalog.Release(ctx, offeredProductID); err != nil {
			return fmt.Errorf("s.catalog.Release offered -> %w", err)
		}
	}

	return nil
}

// FinalizeSale ends a product's life in the catalog: sold=true,
// reserved=false, optionally under a new owner.
func (s *ReservationService) FinalizeSale(ctx context.Context, productID, newOwnerID string) error {
	if err := s.catalog.FinalizeSale(ctx, productID, newOwnerID); err != nil {
		return fmt.Errorf("s.catalog.FinalizeSale -> %w", err)
	}

	return nil
}
