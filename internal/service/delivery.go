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
	"github.com/swapnest/swapnest-api/internal/pkg/deliverycode"
	"github.com/swapnest/swapnest-api/internal/repository"
)

var (
	ErrInvalidCodeFormat  = deliverycode.ErrMalformedCode
	ErrTokenNotFound      = repository.ErrTokenNotFound
	ErrTokenAlreadyUsed   = repository.ErrTokenAlreadyUsed
	ErrTokenExpired       = repository.ErrTokenExpired
	ErrProductNotReserved  = errors.New("product must be reserved before a delivery token is issued")
	ErrNotProductOwner     = errors.New("only the product owner may issue a delivery token")
	ErrTransactionMismatch = errors.New("transaction does not match the delivery details")
	ErrNotTokenParty       = errors.New("user is not a party of this delivery")
)

type DeliveryTokenRepository interface {
	Create(ctx context.Context, token domain.DeliveryToken) (domain.DeliveryToken, error)
	FindByID(ctx context.Context, id string) (domain.DeliveryToken, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.DeliveryToken, error)
	Consume(ctx context.Context, id string, now time.Time) error
}

// DeliveryService owns the lifecycle of single-use delivery tokens. A token
// is only issued against a reserved product, is valid for a fixed window,
// and can be consumed exactly once; consumption completes the bound
// transaction and finalizes the sale.
type DeliveryService struct {
	repo         DeliveryTokenRepository
	catalog      CatalogRepository
	transactions *TransactionService
	reservations *ReservationService
	notifier     Notifier
	tokenTTL     time.Duration
}

func NewDeliveryService(
	repo DeliveryTokenRepository,
	catalog CatalogRepository,
	transactions *TransactionService,
	reservations *ReservationService,
	notifier Notifier,
	tokenTTL time.Duration,
) *DeliveryService {
	return &DeliveryService{
		repo:         repo,
		catalog:      catalog,
		transactions: transactions,
		reservations: reservations,
		notifier:     notifier,
		tokenTTL:     tokenTTL,
	}
}

// Generate issues a new delivery token. Only the product's owner may issue
// one, and the product must already be reserved: a handoff capability on an
// unlocked product would let a second concurrent transaction settle the same
// item. A bound transaction must be Accepted and name the same product,
// seller and buyer, so a token can never settle a transaction it does not
// belong to.
func (s *DeliveryService) Generate(ctx context.Context, productID, sellerID, buyerID, transactionID string) (domain.DeliveryToken, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.DeliveryToken{}, fmt.Errorf("s.catalog.GetProduct -> %w", err)
	}
	if product.OwnerID != sellerID {
		return domain.DeliveryToken{}, ErrNotProductOwner
	}
	if !product.Reserved {
		return domain.DeliveryToken{}, ErrProductNotReserved
	}

	if transactionID != "" {
		transaction, err := s.transactions.GetTransaction(ctx, transactionID, sellerID)
		if err != nil {
			return domain.DeliveryToken{}, fmt.Errorf("s.transactions.GetTransaction -> %w", err)
		}
		if transaction.Status != domain.TransactionAccepted {
			return domain.DeliveryToken{}, ErrTransactionNotAccepted
		}
		if transaction.ProductID != productID ||
			transaction.SellerID != sellerID ||
			transaction.BuyerID != buyerID {
			return domain.DeliveryToken{}, ErrTransactionMismatch
		}
	}

	now := time.Now()
	id := uuid.NewString()

	token := domain.DeliveryToken{
		ID:            id,
		Code:          deliverycode.Encode(id, productID, now),
		ProductID:     productID,
		ProductTitle:  product.Title,
		SellerID:      sellerID,
		BuyerID:       buyerID,
		TransactionID: transactionID,
		Status:        domain.TokenPending,
		Used:          false,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.tokenTTL),
	}

	created, err := s.repo.Create(ctx, token)
	if err != nil {
		return domain.DeliveryToken{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.notifier.Notify(ctx, buyerID, domain.NotifyDeliveryReady,
		"Delivery code ready",
		fmt.Sprintf("Scan the seller's code to confirm the handoff of %q", product.Title),
		"/delivery/tokens/"+created.ID)

	return created, nil
}

// Validate is a pure read-check of a scanned code: it decodes, looks the
// token up and reports its state without mutating anything, so concurrent
// validations are always safe.
func (s *DeliveryService) Validate(ctx context.Context, raw string) (domain.DeliveryToken, error) {
	payload, err := deliverycode.Decode(raw)
	if err != nil {
		return domain.DeliveryToken{}, err
	}

	token, err := s.repo.FindByID(ctx, payload.TokenID)
	if err != nil {
		return domain.DeliveryToken{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if token.Used {
		return domain.DeliveryToken{}, ErrTokenAlreadyUsed
	}
	if token.Expired(time.Now()) {
		return domain.DeliveryToken{}, ErrTokenExpired
	}

	return token, nil
}

// Redeem consumes a token exactly once. The used flag and the expiry are
// re-checked inside the same conditional write that flips the flag, closing
// the race between Validate and Redeem. On success the bound transaction is
// completed and the product leaves the catalog as sold.
func (s *DeliveryService) Redeem(ctx context.Context, raw, actorID string) (domain.Transaction, error) {
	token, err := s.Validate(ctx, raw)
	if err != nil {
		return domain.Transaction{}, err
	}

	if token.SellerID != actorID && token.BuyerID != actorID {
		return domain.Transaction{}, ErrNotTokenParty
	}

	if err = s.repo.Consume(ctx, token.ID, time.Now()); err != nil {
		return domain.Transaction{}, err
	}

	metrics.TokensRedeemed.Inc()

	var transaction domain.Transaction
	if token.TransactionID != "" {
		transaction, err = s.transactions.CompleteViaDelivery(ctx, token.TransactionID, actorID)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("s.transactions.CompleteViaDelivery -> %w", err)
		}
	}

	// The token is already spent and the transaction completed; a finalize
	// failure here is a stuck state operators must reconcile, not a path
	// that can be rolled back.
	if err = s.reservations.FinalizeSale(ctx, token.ProductID, ""); err != nil {
		metrics.CompensationsFailed.Inc()
		zap.L().Error("token consumed but sale not finalized, product state inconsistent",
			zap.String("token_id", token.ID),
			zap.String("product_id", token.ProductID),
			zap.String("transaction_id", token.TransactionID),
			zap.Error(err))
		return domain.Transaction{}, fmt.Errorf("s.reservations.FinalizeSale -> %w", err)
	}

	return transaction, nil
}

// GetUserTokens lists a user's tokens, expired ones included: they stay
// visible as "expired" for audit.
func (s *DeliveryService) GetUserTokens(ctx context.Context, userID string) ([]domain.DeliveryToken, error) {
	tokens, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return tokens, nil
}
