// Package balance computes the signed balance deltas a transaction event
// applies to account records. It is pure computation: the lifecycle service
// decides when to invoke it and persists the results atomically. Keeping the
// branching here, independent of storage, makes every case enumerable and
// unit-testable.
package balance

import (
	"github.com/shopspring/decimal"

	"tally/internal/models"
)

// Places is the fixed-point scale of every stored balance and amount.
const Places = 2

// Delta is one signed adjustment to a single account's stored balance.
type Delta struct {
	AccountID uint
	Amount    decimal.Decimal
}

// Round rounds d to the stored fixed-point scale, half away from zero.
// Applied once per arithmetic step, matching the stored representation,
// never deferred to display.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Effect returns the signed delta a transaction applies to its source
// account: Withdrawal and Transfer debit it, Deposit credits it.
func Effect(t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == models.TransactionTypeDeposit {
		return amount
	}
	return amount.Neg()
}

// TransferLeg returns the delta applied to a transfer's destination account:
// toAmount when one is recorded, otherwise amount (no conversion rate).
func TransferLeg(amount, toAmount decimal.Decimal) decimal.Decimal {
	if !toAmount.IsZero() {
		return toAmount
	}
	return amount
}

// OnCreate returns the deltas for a newly created transaction: the source
// effect, plus the destination leg iff the transaction is a transfer with a
// destination account.
func OnCreate(t *models.Transaction) []Delta {
	deltas := []Delta{{AccountID: t.AccountID, Amount: Effect(t.Type, t.Amount)}}
	if t.Type == models.TransactionTypeTransfer && t.ToAccountID != nil {
		deltas = append(deltas, Delta{
			AccountID: *t.ToAccountID,
			Amount:    TransferLeg(t.Amount, t.ToAmount),
		})
	}
	return deltas
}

// OnDelete returns the exact inverse of what OnCreate applied for the stored
// transaction, using its stored values.
func OnDelete(t *models.Transaction) []Delta {
	return negate(OnCreate(t))
}

// OnUpdate returns the deltas for a field change: reverse the old effects,
// then apply the new ones. The two halves may target different accounts or
// different transaction types entirely, so they are never collapsed into a
// single diffed delta. When old and new reference the same account, the
// service nets the two steps against the same row; when they differ, each
// account receives its own side of the adjustment. A destination leg only
// exists in the half whose type is Transfer.
func OnUpdate(old, updated *models.Transaction) []Delta {
	return append(OnDelete(old), OnCreate(updated)...)
}

func negate(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{AccountID: d.AccountID, Amount: d.Amount.Neg()}
	}
	return out
}
