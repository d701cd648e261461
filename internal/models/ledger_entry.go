package models

import (
	"time"
)

// LedgerEntry is one immutable monetary event, denominated in minor units.
// Rows are append-only: the only permitted update is a status transition from
// pending to success or failed. Balances are always derived by folding over
// success entries; there is no stored balance column anywhere.
type LedgerEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Type        string    `gorm:"size:20;not null;index" json:"type"`   // deposit, withdrawal, earning, refund, payment
	Amount      int64     `gorm:"not null" json:"amount"`               // minor units, always positive; sign implied by Type
	Status      string    `gorm:"size:10;not null;index" json:"status"` // pending, success, failed
	Reference   string    `gorm:"size:128;index" json:"reference"`
	ProviderRef string    `gorm:"size:128;index" json:"provider_ref"` // external transfer/payment id, when applicable
	Metadata    string    `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
