package domain

import (
	"time"
)

type TransactionKind string

const (
	KindSale     TransactionKind = "Sale"
	KindDonation TransactionKind = "Donation"
	KindTrade    TransactionKind = "Trade"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "Pending"
	TransactionAccepted  TransactionStatus = "Accepted"
	TransactionRejected  TransactionStatus = "Rejected"
	TransactionCompleted TransactionStatus = "Completed"
	TransactionCancelled TransactionStatus = "Cancelled"
)

// Transaction ties one buyer to one seller over one product
// (two products for trades). Product title and thumbnail are display
// snapshots taken at creation time; the catalog record stays authoritative
// for ownership and reservation.
type Transaction struct {
	ID string `json:"id"`

	SellerID   string `json:"seller_id"`
	SellerName string `json:"seller_name"`
	BuyerID    string `json:"buyer_id"`
	BuyerName  string `json:"buyer_name"`

	ProductID        string          `json:"product_id"`
	ProductTitle     string          `json:"product_title"`
	ProductThumbnail string          `json:"product_thumbnail"`
	Kind             TransactionKind `json:"kind"`

	// Trade fields are populated iff Kind == KindTrade.
	OfferedProductID    string `json:"offered_product_id,omitempty"`
	OfferedProductTitle string `json:"offered_product_title,omitempty"`
	OfferMessage        string `json:"offer_message,omitempty"`

	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case TransactionRejected, TransactionCompleted, TransactionCancelled:
		return true
	}
	return false
}

func (t *Transaction) CanRespond() bool {
	return t.Status == TransactionPending
}

func (t *Transaction) CanCancel() bool {
	return t.Status == TransactionPending || t.Status == TransactionAccepted
}

// Counterparty returns the user to notify for an action performed by actorID.
func (t *Transaction) Counterparty(actorID string) string {
	if actorID == t.BuyerID {
		return t.SellerID
	}
	return t.BuyerID
}
