package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/metrics"
	"github.com/swapnest/swapnest-api/internal/repository"
)

var ErrNoItemsAvailable = repository.ErrNoEligibleItems

// RedemptionService implements the surprise box: spend gamification points,
// receive a randomly chosen donated item. Point debit and ownership
// reassignment are two writes with no shared transaction, so a failed
// reassignment is compensated by re-crediting the points, so a failed
// redemption nets to zero.
type RedemptionService struct {
	ledger       *LedgerService
	catalog      CatalogRepository
	reservations *ReservationService
	notifier     Notifier
	boxCost      int
}

func NewRedemptionService(
	ledger *LedgerService,
	catalog CatalogRepository,
	reservations *ReservationService,
	notifier Notifier,
	boxCost int,
) *RedemptionService {
	return &RedemptionService{
		ledger:       ledger,
		catalog:      catalog,
		reservations: reservations,
		notifier:     notifier,
		boxCost:      boxCost,
	}
}

func (s *RedemptionService) BoxCost() int {
	return s.boxCost
}

func (s *RedemptionService) RedeemSurpriseBox(ctx context.Context, userID string) (domain.Product, error) {
	stats, err := s.ledger.GetStats(ctx, userID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.ledger.GetStats -> %w", err)
	}
	if stats.Points < s.boxCost {
		return domain.Product{}, ErrInsufficientPoints
	}

	// No eligible items is a clean, mutation-free exit.
	product, err := s.catalog.FindRandomEligibleDonation(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEligibleItems) {
			return domain.Product{}, ErrNoItemsAvailable
		}
		return domain.Product{}, fmt.Errorf("s.catalog.FindRandomEligibleDonation -> %w", err)
	}

	if err = s.ledger.DebitPoints(ctx, userID, s.boxCost); err != nil {
		return domain.Product{}, fmt.Errorf("s.ledger.DebitPoints -> %w", err)
	}

	if err = s.reservations.FinalizeSale(ctx, product.ID, userID); err != nil {
		if compErr := s.ledger.AddPoints(ctx, userID, s.boxCost, "surprise box rollback"); compErr != nil {
			metrics.CompensationsFailed.Inc()
			zap.L().Error("surprise box compensation failed, points lost",
				zap.String("user_id", userID),
				zap.Int("cost", s.boxCost),
				zap.Error(compErr))
		}
		return domain.Product{}, fmt.Errorf("s.reservations.FinalizeSale -> %w", err)
	}

	metrics.SurpriseBoxesRedeemed.Inc()

	s.notifier.Notify(ctx, product.OwnerID, domain.NotifyDeliveryDone,
		"Donation claimed",
		fmt.Sprintf("Your donated %q found a new home", product.Title),
		"/products/"+product.ID)

	product.OwnerID = userID
	product.Sold = true
	product.Reserved = false

	return product, nil
}
