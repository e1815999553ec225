package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"
)

// JSON-RPC error code the ledger node returns for missing entities.
const codeNotFound = -32004

// Client talks JSON-RPC 2.0 to the ledger node. It does no retries:
// retry policy belongs to the caller, which needs to distinguish
// "definitely not applied" (ErrRejected) from "outcome unknown"
// (ErrUnreachable) first.
type Client struct {
	url  string
	http *http.Client
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, out any, params ...any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: http %d", ErrUnreachable, method, resp.StatusCode)
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, method, err)
	}
	if rr.Error != nil {
		if rr.Error.Code == codeNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, rr.Error.Message)
		}
		return fmt.Errorf("%w: %s: %s", ErrRejected, method, rr.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rr.Result, out); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnreachable, method, err)
		}
	}
	return nil
}

// submit runs a state-transition method and checks the receipt. The receipt
// is returned even on ErrRejected so callers can log the tx hash.
func (c *Client) submit(ctx context.Context, method string, params ...any) (Receipt, error) {
	var rc Receipt
	if err := c.call(ctx, method, &rc, params...); err != nil {
		return Receipt{}, err
	}
	if !rc.OK {
		return rc, fmt.Errorf("%w: %s: tx %s reverted", ErrRejected, method, rc.TxHash)
	}
	return rc, nil
}

// ---- reads ----

func (c *Client) GetProduct(ctx context.Context, id uint64) (Product, error) {
	var p Product
	err := c.call(ctx, "market_getProduct", &p, id)
	return p, err
}

func (c *Client) GetOrder(ctx context.Context, id uint64) (Order, error) {
	var o Order
	err := c.call(ctx, "market_getOrder", &o, id)
	return o, err
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var ps []Product
	err := c.call(ctx, "market_getProducts", &ps)
	return ps, err
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var os []Order
	err := c.call(ctx, "market_getOrders", &os)
	return os, err
}

// TransactionByHash returns (nil, nil) when the hash resolves to no known
// transaction: absence is a normal negative outcome, not a system error.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (*TxRecord, error) {
	var tx *TxRecord
	if err := c.call(ctx, "market_getTransaction", &tx, hash); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return tx, nil
}

// ---- submits ----

func (c *Client) CreateProduct(ctx context.Context, name, photo, description string, price *big.Int, seller string) (Receipt, error) {
	return c.submit(ctx, "market_createProduct", name, photo, description, price, seller)
}

func (c *Client) DeleteProduct(ctx context.Context, id uint64, seller string) (Receipt, error) {
	return c.submit(ctx, "market_deleteProduct", id, seller)
}

func (c *Client) ReserveProduct(ctx context.Context, id uint64, buyer, shippingInfo string, amount *big.Int) (Receipt, error) {
	return c.submit(ctx, "market_reserveProduct", id, buyer, shippingInfo, amount)
}

func (c *Client) ConfirmSend(ctx context.Context, orderID uint64, seller string) (Receipt, error) {
	return c.submit(ctx, "market_confirmSend", orderID, seller)
}

func (c *Client) ConfirmReceived(ctx context.Context, orderID uint64, buyer string, amount *big.Int, seller string) (Receipt, error) {
	return c.submit(ctx, "market_confirmReceived", orderID, buyer, amount, seller)
}

func (c *Client) CancelReservation(ctx context.Context, orderID uint64, buyer string, amount *big.Int) (Receipt, error) {
	return c.submit(ctx, "market_cancelReservation", orderID, buyer, amount)
}
