package market

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ariefcatur/go-market-escrow.git/internal/ledger"
	kafkago "github.com/segmentio/kafka-go"
)

// fakeLedger is an in-memory stand-in for the gateway. Submissions are
// recorded by operation name so tests can assert what reached the ledger.
type fakeLedger struct {
	products map[uint64]ledger.Product
	orders   map[uint64]ledger.Order
	txs      map[string]ledger.TxRecord

	submits []string
	reject  map[string]bool
	seq     int

	lastReserve struct {
		id           uint64
		buyer        string
		shippingInfo string
		amount       *big.Int
	}
	lastRelease struct {
		orderID uint64
		buyer   string
		amount  *big.Int
		seller  string
	}
	lastCancel struct {
		orderID uint64
		buyer   string
		amount  *big.Int
	}
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		products: map[uint64]ledger.Product{},
		orders:   map[uint64]ledger.Order{},
		txs:      map[string]ledger.TxRecord{},
		reject:   map[string]bool{},
	}
}

func (f *fakeLedger) receiptFor(op string) (ledger.Receipt, error) {
	f.submits = append(f.submits, op)
	if f.reject[op] {
		rc := ledger.Receipt{TxHash: "0xdead", OK: false}
		return rc, fmt.Errorf("%w: %s reverted", ledger.ErrRejected, op)
	}
	f.seq++
	return ledger.Receipt{TxHash: fmt.Sprintf("0x%04x", f.seq), OK: true}, nil
}

func (f *fakeLedger) GetProduct(_ context.Context, id uint64) (ledger.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return ledger.Product{}, fmt.Errorf("%w: product %d", ledger.ErrNotFound, id)
	}
	return p, nil
}

func (f *fakeLedger) GetOrder(_ context.Context, id uint64) (ledger.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return ledger.Order{}, fmt.Errorf("%w: order %d", ledger.ErrNotFound, id)
	}
	return o, nil
}

func (f *fakeLedger) ListProducts(_ context.Context) ([]ledger.Product, error) {
	ids := make([]uint64, 0, len(f.products))
	for id := range f.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]ledger.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.products[id])
	}
	return out, nil
}

func (f *fakeLedger) ListOrders(_ context.Context) ([]ledger.Order, error) {
	ids := make([]uint64, 0, len(f.orders))
	for id := range f.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]ledger.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.orders[id])
	}
	return out, nil
}

func (f *fakeLedger) TransactionByHash(_ context.Context, hash string) (*ledger.TxRecord, error) {
	tx, ok := f.txs[hash]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (f *fakeLedger) CreateProduct(_ context.Context, name, photo, description string, price *big.Int, seller string) (ledger.Receipt, error) {
	return f.receiptFor("create")
}

func (f *fakeLedger) DeleteProduct(_ context.Context, id uint64, seller string) (ledger.Receipt, error) {
	return f.receiptFor("delete")
}

func (f *fakeLedger) ReserveProduct(_ context.Context, id uint64, buyer, shippingInfo string, amount *big.Int) (ledger.Receipt, error) {
	f.lastReserve.id = id
	f.lastReserve.buyer = buyer
	f.lastReserve.shippingInfo = shippingInfo
	f.lastReserve.amount = amount
	return f.receiptFor("reserve")
}

func (f *fakeLedger) ConfirmSend(_ context.Context, orderID uint64, seller string) (ledger.Receipt, error) {
	return f.receiptFor("confirmSend")
}

func (f *fakeLedger) ConfirmReceived(_ context.Context, orderID uint64, buyer string, amount *big.Int, seller string) (ledger.Receipt, error) {
	f.lastRelease.orderID = orderID
	f.lastRelease.buyer = buyer
	f.lastRelease.amount = amount
	f.lastRelease.seller = seller
	return f.receiptFor("confirmReceived")
}

func (f *fakeLedger) CancelReservation(_ context.Context, orderID uint64, buyer string, amount *big.Int) (ledger.Receipt, error) {
	f.lastCancel.orderID = orderID
	f.lastCancel.buyer = buyer
	f.lastCancel.amount = amount
	return f.receiptFor("cancel")
}

// fakePublisher records published envelopes.
type fakePublisher struct {
	values [][]byte
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.values = append(p.values, value)
}

func newEngine(f *fakeLedger) *Engine {
	return &Engine{
		Ledger:   f,
		Verifier: &Verifier{Ledger: f},
		Service:  "test",
	}
}
