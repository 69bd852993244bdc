package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/metrics"
	"github.com/swapnest/swapnest-api/internal/repository"
)

var (
	ErrTransactionNotFound       = repository.ErrTransactionNotFound
	ErrSelfTransaction           = errors.New("cannot open a transaction on your own product")
	ErrProductUnavailable        = errors.New("product is not available")
	ErrTradeOfferRequired        = errors.New("trade products require a trade offer")
	ErrOfferedProductUnavailable = errors.New("offered product is not available")
	ErrNotOfferedProductOwner    = errors.New("offered product does not belong to the buyer")
	ErrNotTransactionParty       = errors.New("user is not a party of this transaction")
	ErrTransactionClosed         = errors.New("transaction is already closed")
	ErrTransactionNotAccepted    = errors.New("transaction has not been accepted")
	ErrReservationConflict       = errors.New("product reserved by a concurrent transaction")
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	FindByID(ctx context.Context, id string) (domain.Transaction, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Transaction, error)
	TransitionStatus(ctx context.Context, id string, from, to domain.TransactionStatus) error
}

// TransactionService owns the offer/transaction lifecycle:
// Pending -> {Accepted, Rejected}, Accepted -> {Completed, Cancelled}.
// Terminal states never move again; every transition is a conditional write
// guarded on the expected prior status.
type TransactionService struct {
	repo         TransactionRepository
	catalog      CatalogRepository
	reservations *ReservationService
	stats        UserStatsRepository
	notifier     Notifier
}

func NewTransactionService(
	repo TransactionRepository,
	catalog CatalogRepository,
	reservations *ReservationService,
	stats UserStatsRepository,
	notifier Notifier,
) *TransactionService {
	return &TransactionService{
		repo:         repo,
		catalog:      catalog,
		reservations: reservations,
		stats:        stats,
		notifier:     notifier,
	}
}

// CreatePurchaseRequest opens a Pending transaction for a Sale or Donation
// product. Trade products must go through CreateTradeOffer.
func (s *TransactionService) CreatePurchaseRequest(ctx context.Context, productID, buyerID string) (domain.Transaction, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.catalog.GetProduct -> %w", err)
	}

	if product.OwnerID == buyerID {
		return domain.Transaction{}, ErrSelfTransaction
	}
	if !product.Active || product.Sold {
		return domain.Transaction{}, ErrProductUnavailable
	}
	if product.Kind == domain.KindTrade {
		return domain.Transaction{}, ErrTradeOfferRequired
	}

	transaction, err := s.create(ctx, product, buyerID, domain.Transaction{
		Kind: product.Kind,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	return transaction, nil
}

// CreateTradeOffer opens a Pending trade transaction. The offered product
// must exist, be active, and belong to the buyer.
func (s *TransactionService) CreateTradeOffer(ctx context.Context, productID, offeredProductID, message, buyerID string) (domain.Transaction, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.catalog.GetProduct -> %w", err)
	}

	if product.OwnerID == buyerID {
		return domain.Transaction{}, ErrSelfTransaction
	}
	if !product.Active || product.Sold {
		return domain.Transaction{}, ErrProductUnavailable
	}

	offered, err := s.catalog.GetProduct(ctx, offeredProductID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.catalog.GetProduct offered -> %w", err)
	}
	if !offered.Active || offered.Sold {
		return domain.Transaction{}, ErrOfferedProductUnavailable
	}
	if offered.OwnerID != buyerID {
		return domain.Transaction{}, ErrNotOfferedProductOwner
	}

	transaction, err := s.create(ctx, product, buyerID, domain.Transaction{
		Kind:                domain.KindTrade,
		OfferedProductID:    offered.ID,
		OfferedProductTitle: offered.Title,
		OfferMessage:        message,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	return transaction, nil
}

func (s *TransactionService) create(ctx context.Context, product domain.Product, buyerID string, template domain.Transaction) (domain.Transaction, error) {
	seller, err := s.stats.GetStats(ctx, product.OwnerID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.stats.GetStats seller -> %w", err)
	}
	buyer, err := s.stats.GetStats(ctx, buyerID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.stats.GetStats buyer -> %w", err)
	}

	now := time.Now()
	template.ID = uuid.NewString()
	template.SellerID = product.OwnerID
	template.SellerName = seller.UserName
	template.BuyerID = buyerID
	template.BuyerName = buyer.UserName
	template.ProductID = product.ID
	template.ProductTitle = product.Title
	template.ProductThumbnail = product.Thumbnail
	template.Status = domain.TransactionPending
	template.CreatedAt = now
	template.UpdatedAt = now

	created, err := s.repo.Create(ctx, template)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	metrics.TransactionsCreated.WithLabelValues(string(created.Kind)).Inc()
	s.notifier.Notify(ctx, created.SellerID, domain.NotifyOfferReceived,
		"New offer received",
		fmt.Sprintf("%s wants your %q", created.BuyerName, created.ProductTitle),
		transactionRef(created.ID))

	return created, nil
}

// Respond lets the seller accept or reject a Pending transaction. Responding
// to an already Accepted or Completed transaction is a no-op success: safe
// to retry, never re-triggers side effects.
func (s *TransactionService) Respond(ctx context.Context, transactionID, actorID string, accept bool) (domain.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if transaction.SellerID != actorID {
		return domain.Transaction{}, ErrNotTransactionParty
	}

	switch transaction.Status {
	case domain.TransactionAccepted, domain.TransactionCompleted:
		return transaction, nil
	case domain.TransactionRejected, domain.TransactionCancelled:
		return domain.Transaction{}, ErrTransactionClosed
	}

	if !accept {
		return s.reject(ctx, transaction)
	}

	return s.accept(ctx, transaction)
}

func (s *TransactionService) reject(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	err := s.repo.TransitionStatus(ctx, transaction.ID, domain.TransactionPending, domain.TransactionRejected)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransaction) {
			return s.rereadAfterLostRace(ctx, transaction.ID)
		}
		return domain.Transaction{}, fmt.Errorf("s.repo.TransitionStatus -> %w", err)
	}

	transaction.Status = domain.TransactionRejected
	transaction.UpdatedAt = time.Now()

	s.notifier.Notify(ctx, transaction.BuyerID, domain.NotifyOfferRejected,
		"Offer rejected",
		fmt.Sprintf("%s declined your offer for %q", transaction.SellerName, transaction.ProductTitle),
		transactionRef(transaction.ID))

	return transaction, nil
}

func (s *TransactionService) accept(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	err := s.repo.TransitionStatus(ctx, transaction.ID, domain.TransactionPending, domain.TransactionAccepted)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransaction) {
			return s.rereadAfterLostRace(ctx, transaction.ID)
		}
		return domain.Transaction{}, fmt.Errorf("s.repo.TransitionStatus -> %w", err)
	}

	// The status is flipped before the lock is taken; a reservation failure
	// must put the transaction back to Pending so no half-accepted state
	// survives.
	if transaction.Kind == domain.KindTrade {
		err = s.reservations.ReservePair(ctx, transaction.ProductID, transaction.OfferedProductID)
	} else {
		err = s.reservations.Reserve(ctx, transaction.ProductID)
	}
	if err != nil {
		if rbErr := s.repo.TransitionStatus(ctx, transaction.ID, domain.TransactionAccepted, domain.TransactionPending); rbErr != nil {
			metrics.CompensationsFailed.Inc()
			zap.L().Error("failed to roll back accept after reservation failure",
				zap.String("transaction_id", transaction.ID),
				zap.Error(rbErr))
		}
		if errors.Is(err, repository.ErrAlreadyReserved) {
			return domain.Transaction{}, ErrReservationConflict
		}
		return domain.Transaction{}, fmt.Errorf("s.reservations reserve -> %w", err)
	}

	transaction.Status = domain.TransactionAccepted
	transaction.UpdatedAt = time.Now()

	s.notifier.Notify(ctx, transaction.BuyerID, domain.NotifyOfferAccepted,
		"Offer accepted",
		fmt.Sprintf("%s accepted your offer for %q", transaction.SellerName, transaction.ProductTitle),
		transactionRef(transaction.ID))

	return transaction, nil
}

// rereadAfterLostRace resolves a lost conditional write. A concurrent accept
// is reported as a no-op success; anything else closed the transaction
// under us.
func (s *TransactionService) rereadAfterLostRace(ctx context.Context, transactionID string) (domain.Transaction, error) {
	current, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	switch current.Status {
	case domain.TransactionAccepted, domain.TransactionCompleted:
		return current, nil
	default:
		return domain.Transaction{}, ErrTransactionClosed
	}
}

// CompleteViaDelivery moves an Accepted transaction to Completed. Invoked by
// the delivery service on successful token redemption; idempotent on an
// already Completed transaction.
func (s *TransactionService) CompleteViaDelivery(ctx context.Context, transactionID, actorID string) (domain.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if transaction.Status == domain.TransactionCompleted {
		return transaction, nil
	}
	if transaction.Status != domain.TransactionAccepted {
		return domain.Transaction{}, ErrTransactionNotAccepted
	}

	err = s.repo.TransitionStatus(ctx, transaction.ID, domain.TransactionAccepted, domain.TransactionCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransaction) {
			current, rerr := s.repo.FindByID(ctx, transactionID)
			if rerr != nil {
				return domain.Transaction{}, fmt.Errorf("s.repo.FindByID -> %w", rerr)
			}
			if current.Status == domain.TransactionCompleted {
				return current, nil
			}
			return domain.Transaction{}, ErrTransactionClosed
		}
		return domain.Transaction{}, fmt.Errorf("s.repo.TransitionStatus -> %w", err)
	}

	transaction.Status = domain.TransactionCompleted
	transaction.UpdatedAt = time.Now()

	metrics.TransactionsCompleted.Inc()
	s.notifier.Notify(ctx, transaction.Counterparty(actorID), domain.NotifyDeliveryDone,
		"Delivery completed",
		fmt.Sprintf("The handoff of %q is confirmed", transaction.ProductTitle),
		transactionRef(transaction.ID))

	return transaction, nil
}

// Cancel closes a Pending or Accepted transaction and releases any
// reservation it held.
func (s *TransactionService) Cancel(ctx context.Context, transactionID, actorID string) (domain.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if transaction.SellerID != actorID && transaction.BuyerID != actorID {
		return domain.Transaction{}, ErrNotTransactionParty
	}
	if !transaction.CanCancel() {
		return domain.Transaction{}, ErrTransactionClosed
	}

	wasAccepted := transaction.Status == domain.TransactionAccepted

	err = s.repo.TransitionStatus(ctx, transaction.ID, transaction.Status, domain.TransactionCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrStaleTransaction) {
			return domain.Transaction{}, ErrTransactionClosed
		}
		return domain.Transaction{}, fmt.Errorf("s.repo.TransitionStatus -> %w", err)
	}

	// Only an accepted transaction holds locks.
	if wasAccepted {
		offeredID := ""
		if transaction.Kind == domain.KindTrade {
			offeredID = transaction.OfferedProductID
		}
		if err = s.reservations.ReleasePair(ctx, transaction.ProductID, offeredID); err != nil {
			zap.L().Error("failed to release reservation on cancel",
				zap.String("transaction_id", transaction.ID),
				zap.Error(err))
		}
	}

	transaction.Status = domain.TransactionCancelled
	transaction.UpdatedAt = time.Now()

	s.notifier.Notify(ctx, transaction.Counterparty(actorID), domain.NotifyOfferCancelled,
		"Transaction cancelled",
		fmt.Sprintf("The transaction for %q was cancelled", transaction.ProductTitle),
		transactionRef(transaction.ID))

	return transaction, nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, transactionID, actorID string) (domain.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if transaction.SellerID != actorID && transaction.BuyerID != actorID {
		return domain.Transaction{}, ErrNotTransactionParty
	}

	return transaction, nil
}

func (s *TransactionService) GetUserTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	transactions, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return transactions, nil
}

func transactionRef(transactionID string) string {
	return "/transactions/" + transactionID
}
