package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tally/internal/balance"
	apperrors "tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/models"
	"tally/internal/pagination"
)

type transactionService struct {
	ledger   *ledger.Ledger
	accounts AccountServicer
}

// NewTransactionService creates a transaction service bound to one ledger.
func NewTransactionService(l *ledger.Ledger, accounts AccountServicer) TransactionServicer {
	return &transactionService{ledger: l, accounts: accounts}
}

// CreateTransaction validates and persists a transaction, applying its
// balance effects in the same atomic write. On any validation failure no
// balance moves.
func (s *transactionService) CreateTransaction(input CreateTransactionInput) (*models.Transaction, error) {
	t := &models.Transaction{
		AccountID:   input.AccountID,
		ToAccountID: input.ToAccountID,
		CategoryID:  input.CategoryID,
		TagID:       input.TagID,
		Type:        input.Type,
		Date:        input.Date,
		Amount:      input.Amount,
		ToAmount:    input.ToAmount,
		Description: input.Description,
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}

	if err := s.validate(t); err != nil {
		return nil, err
	}

	err := s.ledger.Write(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accounts.ApplyDeltas(tx, balance.OnCreate(t))
	})
	if err != nil {
		return nil, err
	}
	return s.GetTransactionByID(t.ID)
}

// ImportTransactions bulk-creates Withdrawal transactions from a bank
// statement. The shared account and category are validated once up front;
// each line then goes through the normal create path as its own atomic
// unit, so a bad line aborts the import with the earlier lines already
// committed and their balance effects applied.
func (s *transactionService) ImportTransactions(input ImportTransactionsInput) ([]models.Transaction, error) {
	if _, err := s.accounts.GetAccountByID(input.AccountID); err != nil {
		return nil, err
	}
	var category models.Category
	if err := s.ledger.DB().First(&category, input.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	imported := make([]models.Transaction, 0, len(input.Items))
	for _, item := range input.Items {
		t, err := s.CreateTransaction(CreateTransactionInput{
			AccountID:   input.AccountID,
			CategoryID:  input.CategoryID,
			Type:        models.TransactionTypeWithdrawal,
			Date:        item.Date,
			Amount:      item.Amount,
			Description: item.Description,
		})
		if err != nil {
			return nil, err
		}
		imported = append(imported, *t)
	}
	return imported, nil
}

// GetTransactionByID retrieves a transaction with its account, category,
// and tag records joined in.
func (s *transactionService) GetTransactionByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := s.ledger.DB().
		Preload("Account").
		Preload("ToAccount").
		Preload("Category").
		Preload("Tag").
		First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &t, nil
}

// ListTransactions returns transactions matching the filter, newest first,
// with related records joined in. Filters are conjunctive; the account
// filter matches a transaction as source or as transfer destination.
func (s *transactionService) ListTransactions(filter TransactionFilter) ([]models.Transaction, error) {
	q, err := s.filteredQuery(filter)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	err = q.
		Preload("Account").
		Preload("ToAccount").
		Preload("Category").
		Preload("Tag").
		Order("date DESC, id DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// ListTransactionsPage is ListTransactions with offset pagination.
func (s *transactionService) ListTransactionsPage(filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	q, err := s.filteredQuery(filter)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Rebuild the query: Count and Find do not share a statement cleanly.
	q, err = s.filteredQuery(filter)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	err = q.
		Preload("Account").
		Preload("ToAccount").
		Preload("Category").
		Preload("Tag").
		Order("date DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &resp, nil
}

// UpdateTransaction applies a partial update. The old effects are reversed
// and the merged transaction's effects applied in one atomic write, so the
// update behaves exactly like delete-then-recreate for balances. A patch
// whose fields all equal the stored values is rejected and moves nothing.
func (s *transactionService) UpdateTransaction(id uint, fields TransactionUpdateFields) (*models.Transaction, error) {
	existing, err := s.loadRow(id)
	if err != nil {
		return nil, err
	}

	old := *existing
	updates := mergeFields(existing, fields)
	if len(updates) == 0 {
		return nil, apperrors.ErrNothingToChange
	}

	if err := s.validate(existing); err != nil {
		return nil, err
	}

	deltas := balance.OnUpdate(&old, existing)
	err = s.ledger.Write(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accounts.ApplyDeltas(tx, deltas)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTransactionByID(id)
}

// DeleteTransaction removes a transaction and reverses its balance effects
// in the same atomic write.
func (s *transactionService) DeleteTransaction(id uint) error {
	t, err := s.loadRow(id)
	if err != nil {
		return err
	}

	return s.ledger.Write(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Transaction{}, id).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accounts.ApplyDeltas(tx, balance.OnDelete(t))
	})
}

// DeleteTransactions deletes each id as its own atomic unit. Ids that do
// not resolve are skipped and reported; any other failure aborts the batch
// with the progress so far already committed.
func (s *transactionService) DeleteTransactions(ids []uint) (*BatchDeleteResult, error) {
	result := &BatchDeleteResult{SkippedIDs: []uint{}}
	for _, id := range ids {
		err := s.DeleteTransaction(id)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.ErrTransactionNotFound.Code {
				result.SkippedIDs = append(result.SkippedIDs, id)
				continue
			}
			return nil, err
		}
		result.DeletedCount++
	}
	return result, nil
}

// loadRow fetches the bare transaction row without joined records.
func (s *transactionService) loadRow(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.ledger.DB().First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &t, nil
}

// validate enforces all transaction invariants against the full (merged)
// record: non-negative 2dp amounts, a known type, resolvable references,
// and the transfer rules for the destination account.
func (s *transactionService) validate(t *models.Transaction) error {
	if !t.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidTransactionType, fmt.Sprintf("Unsupported transaction type %q", t.Type))
	}
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if err := validateAmount(t.ToAmount); err != nil {
		return err
	}

	if _, err := s.accounts.GetAccountByID(t.AccountID); err != nil {
		return err
	}

	var category models.Category
	if err := s.ledger.DB().First(&category, t.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if t.TagID != nil {
		var tag models.Tag
		if err := s.ledger.DB().First(&tag, *t.TagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTagNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if t.Type == models.TransactionTypeTransfer {
		if t.ToAccountID == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Transfers require a destination account")
		}
		if *t.ToAccountID == t.AccountID {
			return apperrors.ErrSameAccountTransfer
		}
		if _, err := s.accounts.GetAccountByID(*t.ToAccountID); err != nil {
			return err
		}
	} else if t.ToAccountID != nil {
		return apperrors.ErrUnexpectedToAccount
	}

	return nil
}

// mergeFields folds the patch into t and returns the column updates for the
// fields that actually differ from the stored values.
func mergeFields(t *models.Transaction, fields TransactionUpdateFields) map[string]interface{} {
	updates := map[string]interface{}{}

	if fields.AccountID != nil && *fields.AccountID != t.AccountID {
		t.AccountID = *fields.AccountID
		updates["account_id"] = t.AccountID
	}
	if fields.ToAccountID != nil && !uintPtrEqual(*fields.ToAccountID, t.ToAccountID) {
		t.ToAccountID = *fields.ToAccountID
		updates["to_account_id"] = t.ToAccountID
	}
	if fields.CategoryID != nil && *fields.CategoryID != t.CategoryID {
		t.CategoryID = *fields.CategoryID
		updates["category_id"] = t.CategoryID
	}
	if fields.TagID != nil && !uintPtrEqual(*fields.TagID, t.TagID) {
		t.TagID = *fields.TagID
		updates["tag_id"] = t.TagID
	}
	if fields.Type != nil && *fields.Type != t.Type {
		t.Type = *fields.Type
		updates["type"] = t.Type
	}
	if fields.Date != nil && !fields.Date.Equal(t.Date) {
		t.Date = *fields.Date
		updates["date"] = t.Date
	}
	if fields.Amount != nil && !fields.Amount.Equal(t.Amount) {
		t.Amount = *fields.Amount
		updates["amount"] = t.Amount
	}
	if fields.ToAmount != nil && !fields.ToAmount.Equal(t.ToAmount) {
		t.ToAmount = *fields.ToAmount
		updates["to_amount"] = t.ToAmount
	}
	if fields.Description != nil && *fields.Description != t.Description {
		t.Description = *fields.Description
		updates["description"] = t.Description
	}

	return updates
}

// filteredQuery validates filter references and builds the WHERE clauses.
func (s *transactionService) filteredQuery(filter TransactionFilter) (*gorm.DB, error) {
	q := s.ledger.DB().Model(&models.Transaction{})

	if filter.AccountID != nil {
		if _, err := s.accounts.GetAccountByID(*filter.AccountID); err != nil {
			return nil, err
		}
		q = q.Where("account_id = ? OR to_account_id = ?", *filter.AccountID, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		var category models.Category
		if err := s.ledger.DB().First(&category, *filter.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.TagID != nil {
		var tag models.Tag
		if err := s.ledger.DB().First(&tag, *filter.TagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrTagNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		q = q.Where("tag_id = ?", *filter.TagID)
	}
	if filter.Year != nil {
		start := time.Date(*filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("date >= ? AND date < ?", start, start.AddDate(1, 0, 0))
	}
	if filter.Month != nil {
		start, err := time.Parse("2006-01", *filter.Month)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("Invalid month %q, expected YYYY-MM", *filter.Month))
		}
		q = q.Where("date >= ? AND date < ?", start, start.AddDate(0, 1, 0))
	}

	return q, nil
}

// validateAmount rejects negative amounts and amounts finer than 2 decimal
// places. Rounding only ever happens on balance arithmetic, never silently
// on stored amounts.
func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "Amount cannot be negative")
	}
	if !amount.Equal(amount.Round(balance.Places)) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "Amount must have at most 2 decimal places")
	}
	return nil
}
