package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tally/internal/balance"
	apperrors "tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/models"
	"tally/internal/validator"
)

type accountService struct {
	ledger *ledger.Ledger
}

// NewAccountService creates an account service bound to one ledger.
func NewAccountService(l *ledger.Ledger) AccountServicer {
	return &accountService{ledger: l}
}

// CreateAccount creates a new account. The opening balance is stored as-is;
// it is the one balance write that does not flow through the transaction
// lifecycle.
func (s *accountService) CreateAccount(title, currency string, openingBalance decimal.Decimal) (*models.Account, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Account title cannot be empty")
	}
	if currency == "" {
		currency = "USD"
	}
	if !validator.ValidCurrency(currency) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown currency code "+currency)
	}
	if !openingBalance.Equal(openingBalance.Round(balance.Places)) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "Opening balance must have at most 2 decimal places")
	}

	if err := s.checkTitleAvailable(title, 0); err != nil {
		return nil, err
	}

	account := &models.Account{
		Title:    title,
		Currency: currency,
		Balance:  openingBalance,
	}
	err := s.ledger.Write(func(tx *gorm.DB) error {
		return tx.Create(account).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// ListAccounts returns all accounts ordered by title.
func (s *accountService) ListAccounts() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.ledger.DB().Order("title ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID retrieves a single account by its ID.
func (s *accountService) GetAccountByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := s.ledger.DB().First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount applies a partial update. Fields equal to the stored values
// do not count as changes; a patch that changes nothing is rejected.
// Updating Balance rewrites the stored balance directly, which amounts to
// adjusting the opening balance.
func (s *accountService) UpdateAccount(id uint, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Account title cannot be empty")
		}
		if title != account.Title {
			if err := s.checkTitleAvailable(title, id); err != nil {
				return nil, err
			}
			updates["title"] = title
		}
	}
	if fields.Currency != nil && *fields.Currency != account.Currency {
		if !validator.ValidCurrency(*fields.Currency) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown currency code "+*fields.Currency)
		}
		updates["currency"] = *fields.Currency
	}
	if fields.Balance != nil && !fields.Balance.Equal(account.Balance) {
		if !fields.Balance.Equal(fields.Balance.Round(balance.Places)) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "Balance must have at most 2 decimal places")
		}
		updates["balance"] = *fields.Balance
	}

	if len(updates) == 0 {
		return nil, apperrors.ErrNothingToChange
	}

	err = s.ledger.Write(func(tx *gorm.DB) error {
		return tx.Model(account).Updates(updates).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetAccountByID(id)
}

// DeleteAccount removes an account together with every transaction that
// touches it, as source or as transfer destination. Balances of other
// accounts are left untouched; the removed transactions are treated as
// history of the deleted account.
func (s *accountService) DeleteAccount(id uint) error {
	if _, err := s.GetAccountByID(id); err != nil {
		return err
	}

	err := s.ledger.Write(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ? OR to_account_id = ?", id, id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Account{}, id).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ApplyDeltas adds each delta to its account's stored balance, rounding
// after every step. Deltas are applied one at a time so that a reversal
// followed by a reapplication on the same account nets through the same
// rounded intermediate values the original writes produced. Must be called
// inside a ledger write transaction.
func (s *accountService) ApplyDeltas(tx *gorm.DB, deltas []balance.Delta) error {
	for _, d := range deltas {
		var account models.Account
		if err := tx.First(&account, d.AccountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAccountNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		next := balance.Round(account.Balance.Add(d.Amount))
		if err := tx.Model(&account).Update("balance", next).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

func (s *accountService) checkTitleAvailable(title string, excludeID uint) error {
	var count int64
	q := s.ledger.DB().Model(&models.Account{}).Where("title = ?", title)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrDuplicateTitle, "An account with this title already exists")
	}
	return nil
}
