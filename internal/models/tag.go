package models

// Tag is a free-form label attachable to transactions.
type Tag struct {
	Base
	Title string `gorm:"uniqueIndex;not null" json:"title"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:TagID" json:"transactions,omitempty"`
}
