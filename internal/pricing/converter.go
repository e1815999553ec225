package pricing

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// ErrOracleUnavailable: a rate refresh was attempted and failed. No
// conversion is performed in that case — callers never silently get a
// stale rate once a refresh was due.
var ErrOracleUnavailable = errors.New("price oracle unavailable")

// weiPerCoin: smallest ledger unit, 18 fractional digits.
var weiPerCoin = decimal.New(1, 18)

type snapshot struct {
	day  time.Time // UTC midnight of the day the rate was fetched
	rate decimal.Decimal
}

// Converter caches the oracle rate once per UTC calendar day. Reads are
// lock-free on the fast path; the refresh is guarded by a single-writer
// mutex so concurrent rollovers produce exactly one fetch.
type Converter struct {
	source RateSource
	now    func() time.Time

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

func NewConverter(source RateSource) *Converter {
	return &Converter{source: source, now: time.Now}
}

func (c *Converter) rate(ctx context.Context) (decimal.Decimal, error) {
	today := utcDay(c.now())
	if s := c.snap.Load(); s != nil && s.day.Equal(today) {
		return s.rate, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// another request may have refreshed while we waited for the lock
	if s := c.snap.Load(); s != nil && s.day.Equal(today) {
		return s.rate, nil
	}

	r, err := c.source.Rate(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	c.snap.Store(&snapshot{day: today, rate: r})
	return r, nil
}

// FiatToCrypto converts a fiat amount into coins with 18 fractional digits,
// rounding half up.
func (c *Converter) FiatToCrypto(ctx context.Context, fiat decimal.Decimal) (decimal.Decimal, error) {
	r, err := c.rate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return fiat.DivRound(r, 18), nil
}

// CryptoToFiat converts a coin amount into fiat with 2 fractional digits,
// rounding half up.
func (c *Converter) CryptoToFiat(ctx context.Context, coins decimal.Decimal) (decimal.Decimal, error) {
	r, err := c.rate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return coins.Mul(r).Round(2), nil
}

// FiatToWei is FiatToCrypto expressed in the ledger's smallest unit.
func (c *Converter) FiatToWei(ctx context.Context, fiat decimal.Decimal) (*big.Int, error) {
	coins, err := c.FiatToCrypto(ctx, fiat)
	if err != nil {
		return nil, err
	}
	return CoinsToWei(coins), nil
}

// WeiToFiat converts a wei amount into fiat with 2 fractional digits.
func (c *Converter) WeiToFiat(ctx context.Context, wei *big.Int) (decimal.Decimal, error) {
	return c.CryptoToFiat(ctx, WeiToCoins(wei))
}

func CoinsToWei(coins decimal.Decimal) *big.Int {
	return coins.Mul(weiPerCoin).BigInt()
}

func WeiToCoins(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -18)
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
