package testutil

import (
	"errors"
	"testing"

	apperrors "tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertBalance reloads the account and checks its stored balance.
func AssertBalance(t *testing.T, l *ledger.Ledger, accountID uint, want string) {
	t.Helper()

	var account models.Account
	if err := l.DB().First(&account, accountID).Error; err != nil {
		t.Fatalf("failed to reload account %d: %v", accountID, err)
	}
	if !account.Balance.Equal(Dec(t, want)) {
		t.Errorf("account %d: expected balance %s, got %s", accountID, want, account.Balance)
	}
}
