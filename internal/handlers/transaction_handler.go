package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/models"
	"tally/internal/pagination"
	"tally/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	newService func(l *ledger.Ledger) services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{
		newService: func(l *ledger.Ledger) services.TransactionServicer {
			return services.NewTransactionService(l, services.NewAccountService(l))
		},
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
type CreateTransactionRequest struct {
	AccountID   uint                   `json:"account_id" binding:"required"`
	ToAccountID *uint                  `json:"to_account_id"`
	CategoryID  uint                   `json:"category_id" binding:"required"`
	TagID       *uint                  `json:"tag_id"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Date        *string                `json:"date"`
	Amount      decimal.Decimal        `json:"amount" binding:"required"`
	ToAmount    decimal.Decimal        `json:"to_amount"`
	Description string                 `json:"description" binding:"max=500"`
}

// UpdateTransactionRequest represents the request payload for updating a
// transaction. Absent fields are left unchanged; to_account_id and tag_id
// may be explicitly null to clear them.
type UpdateTransactionRequest struct {
	AccountID   *uint                   `json:"account_id"`
	ToAccountID *uint                   `json:"to_account_id"`
	CategoryID  *uint                   `json:"category_id"`
	TagID       *uint                   `json:"tag_id"`
	Type        *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Date        *string                 `json:"date"`
	Amount      *decimal.Decimal        `json:"amount"`
	ToAmount    *decimal.Decimal        `json:"to_amount"`
	Description *string                 `json:"description" binding:"omitempty,max=500"`
}

// ListTransactionsRequest represents the query parameters for listing transactions.
type ListTransactionsRequest struct {
	AccountID  *uint   `form:"account_id"`
	CategoryID *uint   `form:"category_id"`
	TagID      *uint   `form:"tag_id"`
	Year       *int    `form:"year" binding:"omitempty,min=1,max=9999"`
	Month      *string `form:"month"`
	pagination.PageRequest
}

// ImportStatementRequest represents the request payload for importing a
// bank statement as Withdrawal transactions.
type ImportStatementRequest struct {
	AccountID    uint                   `json:"account_id" binding:"required"`
	CategoryID   uint                   `json:"category_id" binding:"required"`
	Transactions []ImportStatementEntry `json:"transactions" binding:"required,min=1,dive"`
}

// ImportStatementEntry is one statement line.
type ImportStatementEntry struct {
	Date        string          `json:"date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
}

// BatchDeleteRequest represents the request payload for deleting several
// transactions at once.
type BatchDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// CreateTransaction handles the creation of a new transaction, applying its
// balance effects atomically.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		date = parsed
	}

	transaction, err := h.newService(l).CreateTransaction(services.CreateTransactionInput{
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		CategoryID:  req.CategoryID,
		TagID:       req.TagID,
		Type:        req.Type,
		Date:        date,
		Amount:      req.Amount,
		ToAmount:    req.ToAmount,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ImportStatement handles the bulk import of a bank statement. Every entry
// becomes a Withdrawal against the given account and category, each applying
// its balance effect.
func (h *TransactionHandler) ImportStatement(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	items := make([]services.ImportItem, 0, len(req.Transactions))
	for _, entry := range req.Transactions {
		date, parseErr := parseFlexibleTime(entry.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		items = append(items, services.ImportItem{
			Date:        date,
			Amount:      entry.Amount,
			Description: entry.Description,
		})
	}

	transactions, err := h.newService(l).ImportTransactions(services.ImportTransactionsInput{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Items:      items,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transactions": transactions})
}

// ListTransactions handles the paginated, filtered retrieval of transactions.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	page, err := h.newService(l).ListTransactionsPage(services.TransactionFilter{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		TagID:      req.TagID,
		Year:       req.Year,
		Month:      req.Month,
	}, req.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetTransaction handles the retrieval of a single transaction with its
// related records joined in.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
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

	transaction, err := h.newService(l).GetTransactionByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles partial updates of a transaction, reversing the
// old balance effects and applying the new ones atomically.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
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

	var raw map[string]interface{}
	if err := c.ShouldBindBodyWithJSON(&raw); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	var req UpdateTransactionRequest
	if err := c.ShouldBindBodyWithJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.TransactionUpdateFields{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		ToAmount:    req.ToAmount,
		Description: req.Description,
	}
	// Null and absent both decode to nil; the raw body distinguishes
	// "clear this field" from "leave it alone".
	if _, present := raw["to_account_id"]; present {
		fields.ToAccountID = &req.ToAccountID
	}
	if _, present := raw["tag_id"]; present {
		fields.TagID = &req.TagID
	}
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		fields.Date = &parsed
	}

	transaction, err := h.newService(l).UpdateTransaction(id, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction, reversing its
// balance effects.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
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

	if err := h.newService(l).DeleteTransaction(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// DeleteTransactions handles batch deletion. Missing ids are reported as
// skipped rather than failing the batch.
func (h *TransactionHandler) DeleteTransactions(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.newService(l).DeleteTransactions(req.IDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
