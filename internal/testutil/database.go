// Package testutil provides test helpers for setting up in-memory ledgers,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tally/internal/ledger"
	"tally/internal/models"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.Account{},
	&models.Category{},
	&models.Tag{},
	&models.Transaction{},
}

// SetupTestLedger creates a ledger over an in-memory SQLite database with
// all models migrated. Each call gets its own named database so connection
// pooling works while tests stay isolated from each other.
func SetupTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	dsn := fmt.Sprintf("file:testledger%d?mode=memory&cache=shared", nextID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return ledger.NewFromDB(db)
}

// TeardownTestLedger closes the underlying database connection.
func TeardownTestLedger(t *testing.T, l *ledger.Ledger) {
	t.Helper()

	if err := l.Close(); err != nil {
		t.Errorf("failed to close test ledger: %v", err)
	}
}
