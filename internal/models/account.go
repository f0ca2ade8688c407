package models

import "github.com/shopspring/decimal"

// Account represents a financial account in a ledger. The stored balance is
// kept equal to the opening balance plus the net effect of every transaction
// referencing the account as source or destination.
type Account struct {
	Base
	Title    string          `gorm:"uniqueIndex;not null" json:"title"`
	Currency string          `gorm:"not null;default:'USD'" json:"currency"`
	Balance  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
