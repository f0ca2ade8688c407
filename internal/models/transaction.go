package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeWithdrawal TransactionType = "Withdrawal"
	TransactionTypeDeposit    TransactionType = "Deposit"
	TransactionTypeTransfer   TransactionType = "Transfer"
)

// Valid reports whether t is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeWithdrawal, TransactionTypeDeposit, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction represents a financial transaction in a ledger.
// ToAccountID and ToAmount are only meaningful for transfers; a zero ToAmount
// means the destination receives Amount (no conversion rate recorded).
type Transaction struct {
	Base
	AccountID   uint            `gorm:"not null;index" json:"account_id"`
	ToAccountID *uint           `gorm:"index" json:"to_account_id,omitempty"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	TagID       *uint           `gorm:"index" json:"tag_id,omitempty"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	ToAmount    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"to_amount"`
	Description string          `json:"description"`

	// Relationships
	Account   Account  `gorm:"foreignKey:AccountID" json:"account"`
	ToAccount *Account `gorm:"foreignKey:ToAccountID" json:"to_account,omitempty"`
	Category  Category `gorm:"foreignKey:CategoryID" json:"category"`
	Tag       *Tag     `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}
