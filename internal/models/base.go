package models

import "time"

// Base contains common columns for all tables. Ledger records are deleted
// for real, never soft-deleted: a removed transaction must stop counting
// toward the balance invariant immediately.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
