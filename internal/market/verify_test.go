package market

import (
	"context"
	"math/big"
	"testing"

	"github.com/ariefcatur/go-market-escrow.git/internal/ledger"
)

func TestVerify(t *testing.T) {
	f := newFakeLedger()
	f.txs["0xabc"] = ledger.TxRecord{
		Hash:  "0xabc",
		From:  "0xBuYeR1",
		Value: big.NewInt(1000),
	}
	v := &Verifier{Ledger: f}

	cases := []struct {
		name   string
		hash   string
		sender string
		amount int64
		want   bool
	}{
		{"exact match", "0xabc", "0xBuYeR1", 1000, true},
		{"sender case differs", "0xabc", "0xbuyer1", 1000, true},
		{"sender mismatch", "0xabc", "0xother", 1000, false},
		{"amount mismatch", "0xabc", "0xBuYeR1", 999, false},
		{"unknown hash", "0xmissing", "0xBuYeR1", 1000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Verify(context.Background(), tc.hash, tc.sender, big.NewInt(tc.amount))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Verify() = %v, want %v", got, tc.want)
			}
		})
	}
}
