package repository

import (
	"context"
	"fmt"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/repository/dao"
)

var (
	ErrTransactionNotFound = dao.ErrTransactionNotFound
	ErrStaleTransaction    = dao.ErrStaleTransaction
)

type TransactionDAO interface {
	Insert(ctx context.Context, transaction dao.Transaction) (dao.Transaction, error)
	FindByID(ctx context.Context, id string) (dao.Transaction, error)
	FindByUserID(ctx context.Context, userID string) ([]dao.Transaction, error)
	UpdateStatusGuarded(ctx context.Context, id, fromStatus, toStatus string) error
}

type TransactionRepository struct {
	dao TransactionDAO
}

func NewTransactionRepository(dao TransactionDAO) *TransactionRepository {
	return &TransactionRepository{
		dao: dao,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(transaction))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (domain.Transaction, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Transaction, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	transactions := make([]domain.Transaction, len(found))
	for i, t := range found {
		transactions[i] = r.daoToDomain(t)
	}

	return transactions, nil
}

// TransitionStatus performs the guarded status move backing the state
// machine. It fails with ErrStaleTransaction when the stored status no
// longer matches from.
func (r *TransactionRepository) TransitionStatus(ctx context.Context, id string, from, to domain.TransactionStatus) error {
	if err := r.dao.UpdateStatusGuarded(ctx, id, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatusGuarded -> %w", err)
	}

	return nil
}

func (r *TransactionRepository) domainToDao(t domain.Transaction) dao.Transaction {
	return dao.Transaction{
		ID:                  t.ID,
		SellerID:            t.SellerID,
		SellerName:          t.SellerName,
		BuyerID:             t.BuyerID,
		BuyerName:           t.BuyerName,
		ProductID:           t.ProductID,
		ProductTitle:        t.ProductTitle,
		ProductThumbnail:    t.ProductThumbnail,
		Kind:                string(t.Kind),
		OfferedProductID:    t.OfferedProductID,
		OfferedProductTitle: t.OfferedProductTitle,
		OfferMessage:        t.OfferMessage,
		Status:              string(t.Status),
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

func (r *TransactionRepository) daoToDomain(t dao.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:                  t.ID,
		SellerID:            t.SellerID,
		SellerName:          t.SellerName,
		BuyerID:             t.BuyerID,
		BuyerName:           t.BuyerName,
		ProductID:           t.ProductID,
		ProductTitle:        t.ProductTitle,
		ProductThumbnail:    t.ProductThumbnail,
		Kind:                domain.TransactionKind(t.Kind),
		OfferedProductID:    t.OfferedProductID,
		OfferedProductTitle: t.OfferedProductTitle,
		OfferMessage:        t.OfferMessage,
		Status:              domain.TransactionStatus(t.Status),
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}
