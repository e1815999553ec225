package market

import (
	"context"
	"math/big"
	"strings"
)

// Verifier checks a claimed payment transaction against what the ledger
// actually observed. Pure predicate, no side effects.
type Verifier struct {
	Ledger Ledger
}

// Verify fetches the transaction by hash and compares sender and amount.
// A missing transaction is a normal negative outcome: (false, nil).
// Sender match is case-insensitive, amount match is exact.
//
// An observed transaction is accepted even before it is finalized; the
// reservation itself still goes through the ledger, which is the final
// authority on whether the payment holds up.
func (v *Verifier) Verify(ctx context.Context, txHash, expectedSender string, expectedAmount *big.Int) (bool, error) {
	tx, err := v.Ledger.TransactionByHash(ctx, txHash)
	if err != nil {
		return false, err
	}
	if tx == nil {
		return false, nil
	}
	if !strings.EqualFold(tx.From, expectedSender) {
		return false, nil
	}
	if tx.Value == nil || expectedAmount == nil || tx.Value.Cmp(expectedAmount) != 0 {
		return false, nil
	}
	return true, nil
}
