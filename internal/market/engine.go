package market

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-market-escrow.git/internal/kafka"
	"github.com/ariefcatur/go-market-escrow.git/internal/ledger"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is what the engine needs for event publication.
// *kafkax.Producer satisfies it.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Engine drives products and orders through their lifecycle by submitting
// ledger transactions. It keeps no entity state of its own: every decision
// reads current ledger truth first, and the ledger's own transitions remain
// the final authority — local checks only avoid submissions certain to fail.
type Engine struct {
	Ledger   Ledger
	Verifier *Verifier
	Products Publisher // product lifecycle topic, optional
	Orders   Publisher // order lifecycle topic, optional
	Service  string
}

// CreateProduct lists a new product for sale. Price is in wei.
func (e *Engine) CreateProduct(ctx context.Context, name, photo, description string, price *big.Int, seller string) (ledger.Receipt, error) {
	rc, err := e.Ledger.CreateProduct(ctx, name, photo, description, price, seller)
	if err != nil {
		return rc, err
	}
	e.publish(e.Products, EventProductCreated, rc.TxHash, []byte(rc.TxHash),
		ProductCreatedPayload{Name: name, Price: price, Seller: seller, TxHash: rc.TxHash})
	return rc, nil
}

// DeleteProduct delists a product. Seller ownership and the not-yet-reserved
// precondition are enforced by the ledger, not duplicated here.
func (e *Engine) DeleteProduct(ctx context.Context, id uint64, seller string) (ledger.Receipt, error) {
	rc, err := e.Ledger.DeleteProduct(ctx, id, seller)
	if err != nil {
		return rc, err
	}
	e.publish(e.Products, EventProductDeleted, correlate(id), PartitionKey(id),
		ProductDeletedPayload{ProductID: id, Seller: seller, TxHash: rc.TxHash})
	return rc, nil
}

// ReserveProduct locks a product to one buyer. The buyer's payment
// transaction is verified before anything is submitted: a reservation must
// never be recorded without a matching payment in sight. The ledger can
// still reject if a concurrent reservation won the race.
func (e *Engine) ReserveProduct(ctx context.Context, id uint64, amount *big.Int, buyer, shippingName, shippingAddress, paymentTx string) (ledger.Receipt, error) {
	p, err := e.Ledger.GetProduct(ctx, id)
	if err != nil {
		if ledger.IsNotFound(err) {
			return ledger.Receipt{}, fmt.Errorf("%w: product %d does not exist", ErrInvalidState, id)
		}
		return ledger.Receipt{}, err
	}
	if p.Deleted || p.Reserved || p.Sold {
		return ledger.Receipt{}, fmt.Errorf("%w: product %d cannot be reserved", ErrInvalidState, id)
	}

	ok, err := e.Verifier.Verify(ctx, paymentTx, buyer, amount)
	if err != nil {
		return ledger.Receipt{}, err
	}
	if !ok {
		return ledger.Receipt{}, fmt.Errorf("%w: tx %s", ErrPaymentVerification, paymentTx)
	}

	shippingInfo := fmt.Sprintf("Name: %s, Address: %s", shippingName, shippingAddress)
	rc, err := e.Ledger.ReserveProduct(ctx, id, buyer, shippingInfo, amount)
	if err != nil {
		return rc, err
	}
	e.publish(e.Products, EventProductReserved, correlate(id), PartitionKey(id),
		ProductReservedPayload{ProductID: id, Buyer: buyer, Amount: amount, PaymentTx: paymentTx, TxHash: rc.TxHash})
	return rc, nil
}

// ConfirmSend marks an order as shipped. Seller match and the
// not-canceled/not-released precondition are the ledger's to enforce.
func (e *Engine) ConfirmSend(ctx context.Context, orderID uint64, seller string) (ledger.Receipt, error) {
	rc, err := e.Ledger.ConfirmSend(ctx, orderID, seller)
	if err != nil {
		return rc, err
	}
	e.publish(e.Orders, EventOrderSent, correlate(orderID), PartitionKey(orderID),
		OrderSentPayload{OrderID: orderID, Seller: seller, TxHash: rc.TxHash})
	return rc, nil
}

// ConfirmReceived releases escrowed funds to the seller. The release call
// needs the amount and seller address as explicit arguments, so both are
// read from current ledger state first. Double-release is rejected by the
// ledger's terminal-state exclusivity, not suppressed here.
func (e *Engine) ConfirmReceived(ctx context.Context, orderID uint64, buyer string) (ledger.Receipt, error) {
	o, err := e.Ledger.GetOrder(ctx, orderID)
	if err != nil {
		return ledger.Receipt{}, err
	}
	p, err := e.Ledger.GetProduct(ctx, o.ProductID)
	if err != nil {
		return ledger.Receipt{}, err
	}
	rc, err := e.Ledger.ConfirmReceived(ctx, orderID, buyer, o.Amount, p.Seller)
	if err != nil {
		return rc, err
	}
	e.publish(e.Orders, EventOrderReleased, correlate(orderID), PartitionKey(orderID),
		OrderReleasedPayload{OrderID: orderID, Buyer: buyer, Seller: p.Seller, Amount: o.Amount, TxHash: rc.TxHash})
	return rc, nil
}

// CancelReservation refunds the escrowed amount to the buyer and reopens
// the product for reservation.
func (e *Engine) CancelReservation(ctx context.Context, orderID uint64, buyer string) (ledger.Receipt, error) {
	o, err := e.Ledger.GetOrder(ctx, orderID)
	if err != nil {
		return ledger.Receipt{}, err
	}
	rc, err := e.Ledger.CancelReservation(ctx, orderID, buyer, o.Amount)
	if err != nil {
		return rc, err
	}
	e.publish(e.Orders, EventOrderCanceled, correlate(orderID), PartitionKey(orderID),
		OrderCanceledPayload{OrderID: orderID, Buyer: buyer, Amount: o.Amount, TxHash: rc.TxHash})
	return rc, nil
}

func (e *Engine) publish(p Publisher, eventType, correlationID string, key []byte, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(key, kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func correlate(id uint64) string { return strconv.FormatUint(id, 10) }
