package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/ledger"
	"tally/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, failing the test on malformed input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// CreateTestAccount creates an account with zero balance.
func CreateTestAccount(t *testing.T, l *ledger.Ledger) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, l, "0")
}

// CreateTestAccountWithBalance creates an account with the given opening balance.
func CreateTestAccountWithBalance(t *testing.T, l *ledger.Ledger, balance string) *models.Account {
	t.Helper()

	account := &models.Account{
		Title:    fmt.Sprintf("Test Account %d", nextID()),
		Currency: "USD",
		Balance:  Dec(t, balance),
	}
	if err := l.DB().Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category with a unique title.
func CreateTestCategory(t *testing.T, l *ledger.Ledger) *models.Category {
	t.Helper()

	category := &models.Category{
		Title: fmt.Sprintf("Test Category %d", nextID()),
	}
	if err := l.DB().Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTag creates a tag with a unique title.
func CreateTestTag(t *testing.T, l *ledger.Ledger) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		Title: fmt.Sprintf("Test Tag %d", nextID()),
	}
	if err := l.DB().Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestTransaction inserts a transaction row directly, bypassing the
// lifecycle service and its balance effects.
func CreateTestTransaction(t *testing.T, l *ledger.Ledger, accountID, categoryID uint, txType models.TransactionType, amount string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID:  accountID,
		CategoryID: categoryID,
		Type:       txType,
		Amount:     Dec(t, amount),
		Date:       time.Now(),
	}
	if err := l.DB().Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
