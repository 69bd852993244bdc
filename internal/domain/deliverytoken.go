package domain

import "time"

type DeliveryTokenStatus string

const (
	TokenPending    DeliveryTokenStatus = "Pending"
	TokenInProgress DeliveryTokenStatus = "InProgress"
	TokenCompleted  DeliveryTokenStatus = "Completed"
	TokenCancelled  DeliveryTokenStatus = "Cancelled"
)

// DeliveryToken is a single-use, time-limited capability that authorizes
// marking a physical handoff complete. Expired tokens are never deleted;
// they stay queryable for audit.
type DeliveryToken struct {
	ID   string `json:"id"`
	Code string `json:"code"`

	ProductID    string `json:"product_id"`
	ProductTitle string `json:"product_title"`
	SellerID     string `json:"seller_id"`
	BuyerID      string `json:"buyer_id"`

	// TransactionID links the transaction this token settles, when known.
	TransactionID string `json:"transaction_id,omitempty"`

	Status    DeliveryTokenStatus `json:"status"`
	Used      bool                `json:"used"`
	UsedAt    *time.Time          `json:"used_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

func (t *DeliveryToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
