package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type rpcCall struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// newRPCServer routes each JSON-RPC method to a canned responder.
func newRPCServer(t *testing.T, handlers map[string]func(params []any) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Fatalf("decode rpc call: %v", err)
		}
		h, ok := handlers[call.Method]
		if !ok {
			t.Fatalf("unexpected rpc method %q", call.Method)
		}
		result, rpcErr := h(call.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": 1}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGetProduct(t *testing.T) {
	srv := newRPCServer(t, map[string]func([]any) (any, *rpcError){
		"market_getProduct": func(params []any) (any, *rpcError) {
			return Product{ID: 1, Name: "lamp", Price: big.NewInt(1000), Seller: "0xseller"}, nil
		},
	})
	defer srv.Close()

	c := New(srv.URL, time.Second)
	p, err := c.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.ID != 1 || p.Name != "lamp" || p.Price.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("product = %+v", p)
	}
}

func TestGetProductNotFound(t *testing.T) {
	srv := newRPCServer(t, map[string]func([]any) (any, *rpcError){
		"market_getProduct": func(params []any) (any, *rpcError) {
			return nil, &rpcError{Code: codeNotFound, Message: "no such product"}
		},
	})
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.GetProduct(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSubmitRevertedReceipt(t *testing.T) {
	srv := newRPCServer(t, map[string]func([]any) (any, *rpcError){
		"market_createProduct": func(params []any) (any, *rpcError) {
			return Receipt{TxHash: "0xdead", OK: false}, nil
		},
	})
	defer srv.Close()

	c := New(srv.URL, time.Second)
	rc, err := c.CreateProduct(context.Background(), "lamp", "p.jpg", "d", big.NewInt(1000), "0xseller")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
	// the receipt comes back with the error so callers can log the hash
	if rc.TxHash != "0xdead" {
		t.Fatalf("receipt = %+v", rc)
	}
}

func TestSubmitRPCError(t *testing.T) {
	srv := newRPCServer(t, map[string]func([]any) (any, *rpcError){
		"market_deleteProduct": func(params []any) (any, *rpcError) {
			return nil, &rpcError{Code: -32000, Message: "execution reverted: not seller"}
		},
	})
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.DeleteProduct(context.Background(), 1, "0xwrong")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
}

func TestUnreachableNode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, time.Second)
	_, err := c.GetOrder(context.Background(), 1)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}

func TestTransactionByHash(t *testing.T) {
	srv := newRPCServer(t, map[string]func([]any) (any, *rpcError){
		"market_getTransaction": func(params []any) (any, *rpcError) {
			hash, _ := params[0].(string)
			if hash != "0xknown" {
				return nil, &rpcError{Code: codeNotFound, Message: "transaction not found"}
			}
			return TxRecord{Hash: hash, From: "0xbuyer", Value: big.NewInt(1000)}, nil
		},
	})
	defer srv.Close()

	c := New(srv.URL, time.Second)
	ctx := context.Background()

	tx, err := c.TransactionByHash(ctx, "0xknown")
	if err != nil {
		t.Fatalf("TransactionByHash: %v", err)
	}
	if tx == nil || tx.From != "0xbuyer" || tx.Value.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("tx = %+v", tx)
	}

	// absence is (nil, nil), not an error
	tx, err = c.TransactionByHash(ctx, "0xmissing")
	if err != nil {
		t.Fatalf("TransactionByHash missing: %v", err)
	}
	if tx != nil {
		t.Fatalf("tx = %+v, want nil", tx)
	}
}

func TestCallTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() { close(block); srv.Close() }()

	c := New(srv.URL, 50*time.Millisecond)
	_, err := c.GetProduct(context.Background(), 1)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}
