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
	ErrStatsNotFound       = repository.ErrStatsNotFound
	ErrInsufficientCredits = repository.ErrInsufficientCredits
	ErrInsufficientPoints  = repository.ErrInsufficientPoints
	ErrInvalidAmount       = errors.New("transfer amount must be positive")
	ErrSelfTransfer        = errors.New("cannot transfer credits to yourself")
)

type UserStatsRepository interface {
	GetStats(ctx context.Context, userID string) (domain.UserStats, error)
	DebitCredits(ctx context.Context, userID string, amount int) error
	CreditCredits(ctx context.Context, userID string, amount int) error
	AddPoints(ctx context.Context, userID string, delta int) error
	DebitPoints(ctx context.Context, userID string, amount int) error
	RecordLedgerEntry(ctx context.Context, entry domain.CreditLedgerEntry) (domain.CreditLedgerEntry, error)
}

// LedgerService moves time credits between user balances. The backing store
// has no multi-key transactions, so a transfer is a debit followed by a
// credit with a compensating re-credit when the second write fails: value is
// moved or nothing is, never destroyed.
type LedgerService struct {
	repo UserStatsRepository
}

func NewLedgerService(repo UserStatsRepository) *LedgerService {
	return &LedgerService{
		repo: repo,
	}
}

func (s *LedgerService) GetStats(ctx context.Context, userID string) (domain.UserStats, error) {
	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("s.repo.GetStats -> %w", err)
	}

	return stats, nil
}

func (s *LedgerService) Transfer(ctx context.Context, fromUserID, toUserID string, amount int, reason string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return ErrSelfTransfer
	}

	// Precondition checks before any write: an insufficient balance must be
	// reported without touching either side.
	fromStats, err := s.repo.GetStats(ctx, fromUserID)
	if err != nil {
		return fmt.Errorf("s.repo.GetStats -> %w", err)
	}
	if fromStats.TimeCredits < amount {
		return ErrInsufficientCredits
	}
	if _, err = s.repo.GetStats(ctx, toUserID); err != nil {
		return fmt.Errorf("s.repo.GetStats -> %w", err)
	}

	// The debit re-checks the balance inside a conditional write, closing
	// the race between the read above and this point.
	if err = s.repo.DebitCredits(ctx, fromUserID, amount); err != nil {
		return fmt.Errorf("s.repo.DebitCredits -> %w", err)
	}

	if err = s.repo.CreditCredits(ctx, toUserID, amount); err != nil {
		if compErr := s.repo.CreditCredits(ctx, fromUserID, amount); compErr != nil {
			metrics.CompensationsFailed.Inc()
			zap.L().Error("credit transfer compensation failed, balances inconsistent",
				zap.String("from_user_id", fromUserID),
				zap.String("to_user_id", toUserID),
				zap.Int("amount", amount),
				zap.Error(compErr))
		}
		return fmt.Errorf("s.repo.CreditCredits -> %w", err)
	}

	metrics.CreditsTransferred.Add(float64(amount))

	// Audit trail only. A failed entry does not undo a transfer that has
	// already landed on both balances.
	if _, err = s.repo.RecordLedgerEntry(ctx, domain.CreditLedgerEntry{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     amount,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}); err != nil {
		zap.L().Warn("failed to record ledger entry",
			zap.String("from_user_id", fromUserID),
			zap.String("to_user_id", toUserID),
			zap.Error(err))
	}

	return nil
}

// AddPoints adjusts the gamification-points balance; delta may be negative
// (compensating deductions).
func (s *LedgerService) AddPoints(ctx context.Context, userID string, delta int, reason string) error {
	if err := s.repo.AddPoints(ctx, userID, delta); err != nil {
		return fmt.Errorf("s.repo.AddPoints -> %w", err)
	}

	zap.L().Info("points adjusted",
		zap.String("user_id", userID),
		zap.Int("delta", delta),
		zap.String("reason", reason))

	return nil
}

// DebitPoints removes points only when the balance covers the cost.
func (s *LedgerService) DebitPoints(ctx context.Context, userID string, amount int) error {
	if err := s.repo.DebitPoints(ctx, userID, amount); err != nil {
		return fmt.Errorf("s.repo.DebitPoints -> %w", err)
	}

	return nil
}
