// Package ledger manages ledger containers: one sqlite file per project,
// holding that project's accounts, categories, tags, and transactions.
// Ledgers are independent of each other; no cross-ledger coordination exists.
package ledger

import (
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tally/internal/logger"
)

// Ledger is an open ledger container. Reads may run concurrently without
// restriction; every mutating operation goes through Write, which admits at
// most one writer at a time — balance adjustments read-then-write account
// rows and would otherwise lose updates.
type Ledger struct {
	db      *gorm.DB
	path    string
	writeMu sync.Mutex
}

// Open migrates and opens the ledger file at path. The file is created if it
// does not exist. migrationsURL is a go-migrate source URL such as
// "file://migrations".
func Open(path, migrationsURL string) (*Ledger, error) {
	if err := runMigrations(path, migrationsURL); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}

	return &Ledger{db: db, path: path}, nil
}

func runMigrations(path, migrationsURL string) error {
	mig, err := migrate.New(migrationsURL, "sqlite3://"+path)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed for %s: %w", path, err)
	}
	return nil
}

// NewFromDB wraps an already-open gorm handle. Used by tests that run
// against an in-memory database.
func NewFromDB(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// DB returns the underlying gorm handle for read paths.
func (l *Ledger) DB() *gorm.DB {
	return l.db
}

// Path returns the ledger file path; empty for in-memory ledgers.
func (l *Ledger) Path() string {
	return l.path
}

// Write runs fn inside a database transaction, serialized against all other
// writers on this ledger. Either every row touched by fn persists, or none do.
func (l *Ledger) Write(fn func(tx *gorm.DB) error) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.db.Transaction(fn)
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
