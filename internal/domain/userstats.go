package domain

import "time"

// UserStats holds the two per-user balances this engine mutates:
// gamification points and time credits. Both are written only through the
// ledger service.
type UserStats struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	Points      int       `json:"points"`
	TimeCredits int       `json:"time_credits"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreditLedgerEntry is the audit row recorded for every balance movement.
type CreditLedgerEntry struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Amount     int       `json:"amount"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
