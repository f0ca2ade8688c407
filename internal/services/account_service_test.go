package services

import (
	"testing"

	"tally/internal/ledger"
	"tally/internal/models"
	"tally/internal/testutil"
)

func newAccountServiceForTest(t *testing.T) (AccountServicer, *ledger.Ledger) {
	t.Helper()

	l := testutil.SetupTestLedger(t)
	t.Cleanup(func() { testutil.TeardownTestLedger(t, l) })
	return NewAccountService(l), l
}

func TestCreateAccount(t *testing.T) {
	t.Run("creates with opening balance", func(t *testing.T) {
		svc, l := newAccountServiceForTest(t)

		account, err := svc.CreateAccount("Checking", "EUR", testutil.Dec(t, "150.25"))
		testutil.AssertNoError(t, err)

		if account.ID == 0 {
			t.Error("expected account to be assigned an ID")
		}
		if account.Currency != "EUR" {
			t.Errorf("expected currency EUR, got %s", account.Currency)
		}
		testutil.AssertBalance(t, l, account.ID, "150.25")
	})

	t.Run("defaults currency to USD", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		account, err := svc.CreateAccount("Cash", "", testutil.Dec(t, "0"))
		testutil.AssertNoError(t, err)
		if account.Currency != "USD" {
			t.Errorf("expected default currency USD, got %s", account.Currency)
		}
	})

	t.Run("rejects empty title", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		_, err := svc.CreateAccount("   ", "USD", testutil.Dec(t, "0"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects duplicate title", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		_, err := svc.CreateAccount("Savings", "USD", testutil.Dec(t, "0"))
		testutil.AssertNoError(t, err)

		_, err = svc.CreateAccount("Savings", "USD", testutil.Dec(t, "0"))
		testutil.AssertAppError(t, err, "DUPLICATE_TITLE")
	})

	t.Run("rejects an unknown currency code", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		_, err := svc.CreateAccount("Exotic", "DOGE", testutil.Dec(t, "0"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects opening balance finer than two decimal places", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		_, err := svc.CreateAccount("Precise", "USD", testutil.Dec(t, "1.005"))
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})
}

func TestListAccounts(t *testing.T) {
	t.Run("returns accounts ordered by title", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		for _, title := range []string{"Wallet", "Bank", "Savings"} {
			_, err := svc.CreateAccount(title, "USD", testutil.Dec(t, "0"))
			testutil.AssertNoError(t, err)
		}

		accounts, err := svc.ListAccounts()
		testutil.AssertNoError(t, err)

		if len(accounts) != 3 {
			t.Fatalf("expected 3 accounts, got %d", len(accounts))
		}
		if accounts[0].Title != "Bank" || accounts[2].Title != "Wallet" {
			t.Errorf("expected title order Bank..Wallet, got %s..%s", accounts[0].Title, accounts[2].Title)
		}
	})

	t.Run("empty ledger", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		accounts, err := svc.ListAccounts()
		testutil.AssertNoError(t, err)
		if len(accounts) != 0 {
			t.Errorf("expected no accounts, got %d", len(accounts))
		}
	})
}

func TestGetAccountByID(t *testing.T) {
	t.Run("missing account", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		_, err := svc.GetAccountByID(9999)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestUpdateAccount(t *testing.T) {
	t.Run("renames and rewrites the balance", func(t *testing.T) {
		svc, l := newAccountServiceForTest(t)

		account, err := svc.CreateAccount("Old Name", "USD", testutil.Dec(t, "10.00"))
		testutil.AssertNoError(t, err)

		title := "New Name"
		balance := testutil.Dec(t, "99.99")
		updated, err := svc.UpdateAccount(account.ID, AccountUpdateFields{Title: &title, Balance: &balance})
		testutil.AssertNoError(t, err)

		if updated.Title != "New Name" {
			t.Errorf("expected renamed account, got %s", updated.Title)
		}
		testutil.AssertBalance(t, l, account.ID, "99.99")
	})

	t.Run("rejects a patch equal to stored values", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		account, err := svc.CreateAccount("Stable", "USD", testutil.Dec(t, "10.00"))
		testutil.AssertNoError(t, err)

		title := "Stable"
		_, err = svc.UpdateAccount(account.ID, AccountUpdateFields{Title: &title})
		testutil.AssertAppError(t, err, "NOTHING_TO_CHANGE")
	})

	t.Run("rejects changing to an unknown currency code", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		account, err := svc.CreateAccount("Wallet", "USD", testutil.Dec(t, "0"))
		testutil.AssertNoError(t, err)

		currency := "DOGE"
		_, err = svc.UpdateAccount(account.ID, AccountUpdateFields{Currency: &currency})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects renaming onto an existing title", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		_, err := svc.CreateAccount("First", "USD", testutil.Dec(t, "0"))
		testutil.AssertNoError(t, err)
		second, err := svc.CreateAccount("Second", "USD", testutil.Dec(t, "0"))
		testutil.AssertNoError(t, err)

		title := "First"
		_, err = svc.UpdateAccount(second.ID, AccountUpdateFields{Title: &title})
		testutil.AssertAppError(t, err, "DUPLICATE_TITLE")
	})

	t.Run("missing account", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)

		title := "Any"
		_, err := svc.UpdateAccount(9999, AccountUpdateFields{Title: &title})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("removes the account and every transaction touching it", func(t *testing.T) {
		svc, l := newAccountServiceForTest(t)
		txSvc := NewTransactionService(l, svc)
		category := testutil.CreateTestCategory(t, l)

		doomed, err := svc.CreateAccount("Doomed", "USD", testutil.Dec(t, "100.00"))
		testutil.AssertNoError(t, err)
		survivor, err := svc.CreateAccount("Survivor", "USD", testutil.Dec(t, "100.00"))
		testutil.AssertNoError(t, err)

		_, err = txSvc.CreateTransaction(CreateTransactionInput{
			AccountID:  doomed.ID,
			CategoryID: category.ID,
			Type:       models.TransactionTypeWithdrawal,
			Amount:     testutil.Dec(t, "10.00"),
		})
		testutil.AssertNoError(t, err)
		_, err = txSvc.CreateTransaction(CreateTransactionInput{
			AccountID:   survivor.ID,
			ToAccountID: uintPtr(doomed.ID),
			CategoryID:  category.ID,
			Type:        models.TransactionTypeTransfer,
			Amount:      testutil.Dec(t, "20.00"),
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteAccount(doomed.ID))

		_, err = svc.GetAccountByID(doomed.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

		var count int64
		l.DB().Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected all transactions touching the account removed, got %d rows", count)
		}
		testutil.AssertBalance(t, l, survivor.ID, "80.00")
	})

	t.Run("missing account", func(t *testing.T) {
		svc, _ := newAccountServiceForTest(t)
		testutil.AssertAppError(t, svc.DeleteAccount(9999), "ACCOUNT_NOT_FOUND")
	})
}
