package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// RateSource yields the current fiat price of one unit of the crypto asset.
type RateSource interface {
	Rate(ctx context.Context) (decimal.Decimal, error)
}

// Oracle fetches the spot rate from a coingecko-style price API:
// GET {base}/simple/price?ids={asset}&vs_currencies={fiat}
// -> {"<asset>": {"<fiat>": 2701.23}}
type Oracle struct {
	BaseURL string
	Asset   string
	Fiat    string
	HTTP    *http.Client
}

func NewOracle(baseURL, asset, fiat string) *Oracle {
	return &Oracle{
		BaseURL: baseURL,
		Asset:   asset,
		Fiat:    fiat,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (o *Oracle) Rate(ctx context.Context) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("ids", o.Asset)
	q.Set("vs_currencies", o.Fiat)
	u := o.BaseURL + "/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := o.HTTP.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price api: http %d", resp.StatusCode)
	}

	var body map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}
	rate, ok := body[o.Asset][o.Fiat]
	if !ok {
		return decimal.Zero, fmt.Errorf("price api: no %s/%s rate in response", o.Asset, o.Fiat)
	}
	return rate, nil
}
