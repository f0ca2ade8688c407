package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/services"
)

// AccountHandler handles account-related requests. Services are bound to the
// ledger selected per request, so the handler carries a factory rather than
// a service instance.
type AccountHandler struct {
	newService func(l *ledger.Ledger) services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{newService: services.NewAccountService}
}

// CreateAccountRequest represents the request payload for creating an account.
type CreateAccountRequest struct {
	Title    string          `json:"title" binding:"required,max=100"`
	Currency string          `json:"currency" binding:"omitempty,iso4217"`
	Balance  decimal.Decimal `json:"balance"`
}

// UpdateAccountRequest represents the request payload for updating an account.
// Absent fields are left unchanged.
type UpdateAccountRequest struct {
	Title    *string          `json:"title" binding:"omitempty,max=100"`
	Currency *string          `json:"currency" binding:"omitempty,iso4217"`
	Balance  *decimal.Decimal `json:"balance"`
}

// CreateAccount handles the creation of a new account.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.newService(l).CreateAccount(req.Title, req.Currency, req.Balance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// ListAccounts handles the retrieval of all accounts in the selected ledger.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accounts, err := h.newService(l).ListAccounts()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// GetAccount handles the retrieval of a single account.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.newService(l).GetAccountByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccount handles partial updates of an account.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.newService(l).UpdateAccount(id, services.AccountUpdateFields{
		Title:    req.Title,
		Currency: req.Currency,
		Balance:  req.Balance,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount handles the deletion of an account and its transactions.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.newService(l).DeleteAccount(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
