package market

import (
	"encoding/json"
	"math/big"
	"time"
)

const (
	EventProductCreated  = "ProductCreated"
	EventProductDeleted  = "ProductDeleted"
	EventProductReserved = "ProductReserved"
	EventOrderSent       = "OrderSent"
	EventOrderReleased   = "OrderReleased"
	EventOrderCanceled   = "OrderCanceled"
)

// Envelope v1, one per successful ledger transition.
type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "market-api"
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ---- payload types per event ----

type ProductCreatedPayload struct {
	Name   string   `json:"name"`
	Price  *big.Int `json:"price"`
	Seller string   `json:"seller"`
	TxHash string   `json:"tx_hash"`
}

type ProductDeletedPayload struct {
	ProductID uint64 `json:"product_id"`
	Seller    string `json:"seller"`
	TxHash    string `json:"tx_hash"`
}

type ProductReservedPayload struct {
	ProductID uint64   `json:"product_id"`
	Buyer     string   `json:"buyer"`
	Amount    *big.Int `json:"amount"`
	PaymentTx string   `json:"payment_tx"`
	TxHash    string   `json:"tx_hash"`
}

type OrderSentPayload struct {
	OrderID uint64 `json:"order_id"`
	Seller  string `json:"seller"`
	TxHash  string `json:"tx_hash"`
}

type OrderReleasedPayload struct {
	OrderID uint64   `json:"order_id"`
	Buyer   string   `json:"buyer"`
	Seller  string   `json:"seller"`
	Amount  *big.Int `json:"amount"`
	TxHash  string   `json:"tx_hash"`
}

type OrderCanceledPayload struct {
	OrderID uint64   `json:"order_id"`
	Buyer   string   `json:"buyer"`
	Amount  *big.Int `json:"amount"`
	TxHash  string   `json:"tx_hash"`
}
