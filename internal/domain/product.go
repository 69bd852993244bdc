package domain

import "time"

// Product is the catalog record this engine reads and flags. Catalog CRUD
// lives elsewhere; only the reservation/sold flags and ownership are written
// here, and only through the reservation service.
type Product struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Kind      TransactionKind `json:"kind"`
	Title     string          `json:"title"`
	Thumbnail string          `json:"thumbnail"`
	Active    bool            `json:"active"`
	Sold      bool            `json:"sold"`
	Reserved  bool            `json:"reserved"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
