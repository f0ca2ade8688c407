package models

// Category represents a transaction category. Categories form a tree through
// ParentID; cycle validity beyond self-parenting is not enforced.
type Category struct {
	Base
	Title    string `gorm:"uniqueIndex;not null" json:"title"`
	ParentID *uint  `json:"parent_id,omitempty"`

	// Relationships
	Parent       *Category     `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children     []Category    `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
