package repository

import (
	"context"
	"fmt"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/repository/dao"
)

var (
	ErrStatsNotFound       = dao.ErrStatsNotFound
	ErrInsufficientCredits = dao.ErrInsufficientCredits
	ErrInsufficientPoints  = dao.ErrInsufficientPoints
)

type UserStatsDAO interface {
	FindByUserID(ctx context.Context, userID string) (dao.UserStats, error)
	DebitCredits(ctx context.Context, userID string, amount int) error
	CreditCredits(ctx context.Context, userID string, amount int) error
	AddPoints(ctx context.Context, userID string, delta int) error
	DebitPoints(ctx context.Context, userID string, amount int) error
	InsertLedgerEntry(ctx context.Context, entry dao.CreditLedgerEntry) (dao.CreditLedgerEntry, error)
}

// UserStatsRepository is the only write path for points and time-credit
// balances.
type UserStatsRepository struct {
	dao UserStatsDAO
}

func NewUserStatsRepository(dao UserStatsDAO) *UserStatsRepository {
	return &UserStatsRepository{
		dao: dao,
	}
}

func (r *UserStatsRepository) GetStats(ctx context.Context, userID string) (domain.UserStats, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return domain.UserStats{
		UserID:      found.UserID,
		UserName:    found.UserName,
		Points:      found.Points,
		TimeCredits: found.TimeCredits,
		UpdatedAt:   found.UpdatedAt,
	}, nil
}

func (r *UserStatsRepository) DebitCredits(ctx context.Context, userID string, amount int) error {
	if err := r.dao.DebitCredits(ctx, userID, amount); err != nil {
		return fmt.Errorf("r.dao.DebitCredits -> %w", err)
	}

	return nil
}

func (r *UserStatsRepository) CreditCredits(ctx context.Context, userID string, amount int) error {
	if err := r.dao.CreditCredits(ctx, userID, amount); err != nil {
		return fmt.Errorf("r.dao.CreditCredits -> %w", err)
	}

	return nil
}

func (r *UserStatsRepository) AddPoints(ctx context.Context, userID string, delta int) error {
	if err := r.dao.AddPoints(ctx, userID, delta); err != nil {
		return fmt.Errorf("r.dao.AddPoints -> %w", err)
	}

	return nil
}

func (r *UserStatsRepository) DebitPoints(ctx context.Context, userID string, amount int) error {
	if err := r.dao.DebitPoints(ctx, userID, amount); err != nil {
		return fmt.Errorf("r.dao.DebitPoints -> %w", err)
	}

	return nil
}

func (r *UserStatsRepository) RecordLedgerEntry(ctx context.Context, entry domain.CreditLedgerEntry) (domain.CreditLedgerEntry, error) {
	created, err := r.dao.InsertLedgerEntry(ctx, dao.CreditLedgerEntry{
		ID:         entry.ID,
		FromUserID: entry.FromUserID,
		ToUserID:   entry.ToUserID,
		Amount:     entry.Amount,
		Reason:     entry.Reason,
		CreatedAt:  entry.CreatedAt,
	})
	if err != nil {
		return domain.CreditLedgerEntry{}, fmt.Errorf("r.dao.InsertLedgerEntry -> %w", err)
	}

	return domain.CreditLedgerEntry{
		ID:         created.ID,
		FromUserID: created.FromUserID,
		ToUserID:   created.ToUserID,
		Amount:     created.Amount,
		Reason:     created.Reason,
		CreatedAt:  created.CreatedAt,
	}, nil
}
