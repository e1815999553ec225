package ledger

import "math/big"

// Receipt is the ledger's acknowledgment of a submitted state transition.
type Receipt struct {
	TxHash string `json:"tx_hash"`
	OK     bool   `json:"ok"`
}

// TxRecord is a transaction as observed on the ledger. Value is in wei.
type TxRecord struct {
	Hash  string   `json:"hash"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Value *big.Int `json:"value"`
}

// Product mirrors the on-ledger product record. Never mutated locally;
// every instance is a read of current ledger state.
type Product struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Photo       string   `json:"photo"`
	Description string   `json:"description"`
	Price       *big.Int `json:"price"` // wei
	Seller      string   `json:"seller"`
	Deleted     bool     `json:"deleted"`
	Sold        bool     `json:"sold"`
	Reserved    bool     `json:"reserved"`
	Buyer       string   `json:"buyer"`
}

// Order mirrors the on-ledger order record.
type Order struct {
	ID           uint64   `json:"id"`
	ProductID    uint64   `json:"product_id"`
	Buyer        string   `json:"buyer"`
	Amount       *big.Int `json:"amount"` // wei, fixed at reservation time
	ShippingInfo string   `json:"shipping_info"`
	Sent         bool     `json:"sent"`
	Released     bool     `json:"released"`
	Paid         bool     `json:"paid"`
	Canceled     bool     `json:"canceled"`
}
