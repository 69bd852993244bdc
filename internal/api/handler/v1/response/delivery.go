package response

import (
	"time"

	"github.com/swapnest/swapnest-api/internal/domain"
)

type GenerateTokenResponse struct {
	TokenID   string    `json:"token_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RedeemTokenResponse struct {
	TransactionID     string                   `json:"transaction_id,omitempty"`
	TransactionStatus domain.TransactionStatus `json:"transaction_status,omitempty"`
	Message           string                   `json:"message"`
}

type SurpriseBoxResponse struct {
	Product domain.Product `json:"product"`
	Message string         `json:"message"`
}
