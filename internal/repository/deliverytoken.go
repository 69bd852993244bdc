package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/repository/dao"
)

var (
	ErrTokenNotFound    = dao.ErrTokenNotFound
	ErrTokenAlreadyUsed = dao.ErrTokenAlreadyUsed
	ErrTokenExpired     = dao.ErrTokenExpired
	ErrDuplicateCode    = dao.ErrDuplicateCode
)

type DeliveryTokenDAO interface {
	Insert(ctx context.Context, token dao.DeliveryToken) (dao.DeliveryToken, error)
	FindByID(ctx context.Context, id string) (dao.DeliveryToken, error)
	FindByUserID(ctx context.Context, userID string) ([]dao.DeliveryToken, error)
	MarkUsed(ctx context.Context, id string, now time.Time) error
}

type DeliveryTokenRepository struct {
	dao DeliveryTokenDAO
}

func NewDeliveryTokenRepository(dao DeliveryTokenDAO) *DeliveryTokenRepository {
	return &DeliveryTokenRepository{
		dao: dao,
	}
}

func (r *DeliveryTokenRepository) Create(ctx context.Context, token domain.DeliveryToken) (domain.DeliveryToken, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(token))
	if err != nil {
		return domain.DeliveryToken{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *DeliveryTokenRepository) FindByID(ctx context.Context, id string) (domain.DeliveryToken, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.DeliveryToken{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *DeliveryTokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.DeliveryToken, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	tokens := make([]domain.DeliveryToken, len(found))
	for i, t := range found {
		tokens[i] = r.daoToDomain(t)
	}

	return tokens, nil
}

// Consume flips used=false to true exactly once; already-used and expired
// tokens come back as ErrTokenAlreadyUsed / ErrTokenExpired.
func (r *DeliveryTokenRepository) Consume(ctx context.Context, id string, now time.Time) error {
	if err := r.dao.MarkUsed(ctx, id, now); err != nil {
		return fmt.Errorf("r.dao.MarkUsed -> %w", err)
	}

	return nil
}

func (r *DeliveryTokenRepository) domainToDao(t domain.DeliveryToken) dao.DeliveryToken {
	return dao.DeliveryToken{
		ID:            t.ID,
		Code:          t.Code,
		ProductID:     t.ProductID,
		ProductTitle:  t.ProductTitle,
		SellerID:      t.SellerID,
		BuyerID:       t.BuyerID,
		TransactionID: t.TransactionID,
		Status:        string(t.Status),
		Used:          t.Used,
		UsedAt:        t.UsedAt,
		CreatedAt:     t.CreatedAt,
		ExpiresAt:     t.ExpiresAt,
	}
}

func (r *DeliveryTokenRepository) daoToDomain(t dao.DeliveryToken) domain.DeliveryToken {
	return domain.DeliveryToken{
		ID:            t.ID,
		Code:          t.Code,
		ProductID:     t.ProductID,
		ProductTitle:  t.ProductTitle,
		SellerID:      t.SellerID,
		BuyerID:       t.BuyerID,
		TransactionID: t.TransactionID,
		Status:        domain.DeliveryTokenStatus(t.Status),
		Used:          t.Used,
		UsedAt:        t.UsedAt,
		CreatedAt:     t.CreatedAt,
		ExpiresAt:     t.ExpiresAt,
	}
}
