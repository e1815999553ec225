package market

import (
	"context"
	"math/big"

	"github.com/ariefcatur/go-market-escrow.git/internal/ledger"
)

// Ledger is what the engine and the listing layer need from the gateway.
// *ledger.Client satisfies it; tests use an in-memory fake.
type Ledger interface {
	GetProduct(ctx context.Context, id uint64) (ledger.Product, error)
	GetOrder(ctx context.Context, id uint64) (ledger.Order, error)
	ListProducts(ctx context.Context) ([]ledger.Product, error)
	ListOrders(ctx context.Context) ([]ledger.Order, error)
	TransactionByHash(ctx context.Context, hash string) (*ledger.TxRecord, error)

	CreateProduct(ctx context.Context, name, photo, description string, price *big.Int, seller string) (ledger.Receipt, error)
	DeleteProduct(ctx context.Context, id uint64, seller string) (ledger.Receipt, error)
	ReserveProduct(ctx context.Context, id uint64, buyer, shippingInfo string, amount *big.Int) (ledger.Receipt, error)
	ConfirmSend(ctx context.Context, orderID uint64, seller string) (ledger.Receipt, error)
	ConfirmReceived(ctx context.Context, orderID uint64, buyer string, amount *big.Int, seller string) (ledger.Receipt, error)
	CancelReservation(ctx context.Context, orderID uint64, buyer string, amount *big.Int) (ledger.Receipt, error)
}

// ProductSummary is the product slice embedded in an OrderView.
type ProductSummary struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Photo       string   `json:"photo"`
	Description string   `json:"description"`
	Price       *big.Int `json:"price"`
}

// OrderView joins an order with its product for listing queries. Built on
// demand, never persisted.
type OrderView struct {
	ID              uint64         `json:"id"`
	Product         ProductSummary `json:"product"`
	Total           *big.Int       `json:"total"`
	ProductReserved bool           `json:"product_reserved"`
	Sent            bool           `json:"sent"`
	Released        bool           `json:"released"`
	Paid            bool           `json:"paid"`
	Canceled        bool           `json:"canceled"`
	ProductDeleted  bool           `json:"product_deleted"`
	ShippingInfo    string         `json:"shipping_info"`
	Buyer           string         `json:"buyer"`
}

// Page is a 1-based page of listing results.
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// Sentinels for seller rows synthesized from a product with no order yet.
const (
	NoShippingInfo = "-"
	NoBuyer        = "0x000"
)
