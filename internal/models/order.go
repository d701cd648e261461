package models

import (
	"time"
)

// Order is one purchase plus its escrow record. EscrowStatus starts at
// holding and moves exactly once to released or refunded; the transition and
// the matching ledger credit are written in the same database transaction.
type Order struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	OrderNo      string     `gorm:"size:64;uniqueIndex;not null" json:"order_no"`
	BuyerID      uint       `gorm:"not null;index" json:"buyer_id"`
	SellerID     uint       `gorm:"not null;index" json:"seller_id"`
	TotalAmount  int64      `gorm:"not null" json:"total_amount"` // minor units
	Description  string     `gorm:"size:256" json:"description"`
	Status       string     `gorm:"size:20;not null;index" json:"status"`        // buyer-facing lifecycle
	EscrowStatus string     `gorm:"size:10;not null;index" json:"escrow_status"` // holding, released, refunded
	ResolvedAt   *time.Time `json:"resolved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Buyer  User `gorm:"foreignKey:BuyerID" json:"-"`
	Seller User `gorm:"foreignKey:SellerID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}
