package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tally/internal/balance"
	"tally/internal/models"
	"tally/internal/pagination"
)

// AccountUpdateFields holds the optional fields of an account patch. A nil
// pointer means "leave unchanged".
type AccountUpdateFields struct {
	Title    *string
	Currency *string
	Balance  *decimal.Decimal
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(title, currency string, openingBalance decimal.Decimal) (*models.Account, error)
	ListAccounts() ([]models.Account, error)
	GetAccountByID(id uint) (*models.Account, error)
	UpdateAccount(id uint, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(id uint) error
	ApplyDeltas(tx *gorm.DB, deltas []balance.Delta) error
}

// CategoryUpdateFields holds the optional fields of a category patch. The
// double pointer on ParentID distinguishes "leave unchanged" (outer nil)
// from "detach from parent" (inner nil).
type CategoryUpdateFields struct {
	Title    *string
	ParentID **uint
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(title string, parentID *uint) (*models.Category, error)
	ListCategories() ([]models.Category, error)
	GetCategoryByID(id uint) (*models.Category, error)
	UpdateCategory(id uint, fields CategoryUpdateFields) (*models.Category, error)
	DeleteCategory(id uint) error
}

// TagServicer defines the contract for tag-related business logic.
type TagServicer interface {
	CreateTag(title string) (*models.Tag, error)
	ListTags() ([]models.Tag, error)
	GetTagByID(id uint) (*models.Tag, error)
	UpdateTag(id uint, title string) (*models.Tag, error)
	DeleteTag(id uint) error
}

// CreateTransactionInput holds the fields of a new transaction.
type CreateTransactionInput struct {
	AccountID   uint
	ToAccountID *uint
	CategoryID  uint
	TagID       *uint
	Type        models.TransactionType
	Date        time.Time
	Amount      decimal.Decimal
	ToAmount    decimal.Decimal
	Description string
}

// ImportItem is one statement line: a date, an amount, and a description.
type ImportItem struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// ImportTransactionsInput holds a bank-statement import. Every item becomes
// a Withdrawal against the same account and category.
type ImportTransactionsInput struct {
	AccountID  uint
	CategoryID uint
	Items      []ImportItem
}

// TransactionUpdateFields holds the optional fields of a transaction patch.
// A nil outer pointer means "leave unchanged"; for the nullable columns the
// double pointer distinguishes that from "set to null".
type TransactionUpdateFields struct {
	AccountID   *uint
	ToAccountID **uint
	CategoryID  *uint
	TagID       **uint
	Type        *models.TransactionType
	Date        *time.Time
	Amount      *decimal.Decimal
	ToAmount    *decimal.Decimal
	Description *string
}

// TransactionFilter holds optional, conjunctive filters for listing
// transactions. Month is a YYYY-MM string selecting that calendar month.
type TransactionFilter struct {
	AccountID  *uint
	CategoryID *uint
	TagID      *uint
	Year       *int
	Month      *string
}

// BatchDeleteResult reports the outcome of a batch delete: ids that
// resolved were deleted with their effects reversed, ids that did not are
// collected rather than aborting the rest.
type BatchDeleteResult struct {
	DeletedCount int    `json:"deleted_count"`
	SkippedIDs   []uint `json:"skipped_ids"`
}

// TransactionServicer defines the contract for the transaction lifecycle:
// every mutation keeps stored account balances equal to the net effect of
// all transactions referencing them.
type TransactionServicer interface {
	CreateTransaction(input CreateTransactionInput) (*models.Transaction, error)
	ImportTransactions(input ImportTransactionsInput) ([]models.Transaction, error)
	GetTransactionByID(id uint) (*models.Transaction, error)
	ListTransactions(filter TransactionFilter) ([]models.Transaction, error)
	ListTransactionsPage(filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	UpdateTransaction(id uint, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(id uint) error
	DeleteTransactions(ids []uint) (*BatchDeleteResult, error)
}
