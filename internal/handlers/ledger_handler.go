package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/ledger"
)

// LedgerHandler handles ledger management requests. Unlike the resource
// handlers it operates on the registry itself, not on a selected ledger.
type LedgerHandler struct {
	registry *ledger.Registry
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(registry *ledger.Registry) *LedgerHandler {
	return &LedgerHandler{registry: registry}
}

// CreateLedgerRequest represents the request payload for creating a ledger.
type CreateLedgerRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateLedger creates a new empty ledger file.
func (h *LedgerHandler) CreateLedger(c *gin.Context) {
	var req CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if _, err := h.registry.Create(req.Name); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ledger": gin.H{"name": req.Name}})
}

// ListLedgers returns the names of all ledgers in the data directory.
func (h *LedgerHandler) ListLedgers(c *gin.Context) {
	names, err := h.registry.List()
	if err != nil {
		respondWithError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"ledgers": names})
}
