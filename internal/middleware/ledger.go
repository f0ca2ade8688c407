package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/ledger"
)

// LedgerKey is the Gin context key holding the ledger selected for the request.
const LedgerKey = "ledger"

// LedgerHeader names the request header carrying the ledger selection.
const LedgerHeader = "X-Ledger"

// LedgerSelector returns a Gin middleware that resolves the X-Ledger header
// against the registry and stores the open ledger on the context. Requests
// without a valid selection are rejected; there is no implicit default ledger.
func LedgerSelector(registry *ledger.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.GetHeader(LedgerHeader)
		if name == "" {
			abortWithAppError(c, apperrors.ErrNoLedgerSelected)
			return
		}

		l, err := registry.Get(name)
		if err != nil {
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			abortWithAppError(c, appErr)
			return
		}

		c.Set(LedgerKey, l)
		c.Next()
	}
}

func abortWithAppError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
