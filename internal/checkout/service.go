package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/korichuko/storefront/internal/cart"
)

var (
	// ErrNotFound: nothing to pay for, or the order is not the caller's.
	ErrNotFound = errors.New("order not found")
	// ErrPaymentVerification: generic, retryable; the order stays open.
	ErrPaymentVerification = errors.New("payment verification failed")
)

// PaymentSession is everything the payment-collection view needs to embed.
type PaymentSession struct {
	OrderID        int64  `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	KeyID          string `json:"key_id"`
	AmountMinor    int64  `json:"amount_minor"`
	Currency       string `json:"currency"`
	CallbackURL    string `json:"callback_url"`
}

// Callback is the gateway's post-payment notification.
type Callback struct {
	GatewayOrderID string `json:"gateway_order_id" form:"gateway_order_id"`
	PaymentID      string `json:"gateway_payment_id" form:"gateway_payment_id"`
	Signature      string `json:"gateway_signature" form:"gateway_signature"`
}

// Coordinator drives the one-way open -> completed transition: immediately
// for cash on delivery, after signature verification for online payment.
type Coordinator struct {
	carts    *cart.Service
	orders   cart.Repository
	gateway  Gateway
	keyID    string
	currency string
	baseURL  string
}

func NewCoordinator(carts *cart.Service, orders cart.Repository, gw Gateway, keyID, currency, baseURL string) *Coordinator {
	return &Coordinator{
		carts:    carts,
		orders:   orders,
		gateway:  gw,
		keyID:    keyID,
		currency: currency,
		baseURL:  baseURL,
	}
}

// AmountMinor converts a decimal total into gateway minor units by
// truncating total*100. Truncation, not rounding: changing this changes
// charged amounts.
func AmountMinor(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).IntPart()
}

func (co *Coordinator) openOrder(ctx context.Context, userID int64) (*cart.Order, error) {
	order, err := co.carts.GetOpenOrder(ctx, userID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// CompleteCOD marks the user's open order completed with no external call.
func (co *Coordinator) CompleteCOD(ctx context.Context, userID int64) (*cart.Order, error) {
	order, err := co.openOrder(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := co.orders.MarkCompleted(ctx, order.ID); err != nil {
		return nil, err
	}
	order.Completed = true
	log.Printf("[checkout] order=%d completed method=cod user=%d", order.ID, userID)
	return order, nil
}

// StartOnlinePayment opens a gateway session for the user's open order.
func (co *Coordinator) StartOnlinePayment(ctx context.Context, userID int64) (*PaymentSession, error) {
	order, err := co.openOrder(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap, err := co.carts.OrderSnapshot(ctx, order)
	if err != nil {
		return nil, err
	}

	amountMinor := AmountMinor(snap.Total())
	gwOrderID, err := co.gateway.CreateOrder(ctx, amountMinor, co.currency)
	if err != nil {
		return nil, err
	}
	return &PaymentSession{
		OrderID:        order.ID,
		GatewayOrderID: gwOrderID,
		KeyID:          co.keyID,
		AmountMinor:    amountMinor,
		Currency:       co.currency,
		CallbackURL:    fmt.Sprintf("%s/paymenthandler/%d", co.baseURL, order.ID),
	}, nil
}

// ConfirmPayment completes the order only after the callback signature
// verifies. Verification failure of any kind leaves the order open and is
// reported as the generic ErrPaymentVerification; the user may retry
// checkout from scratch. A repeated callback for an already-completed order
// is a no-op.
func (co *Coordinator) ConfirmPayment(ctx context.Context, userID, orderID int64, cb Callback) (*cart.Order, error) {
	order, err := co.orders.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	if order.Completed {
		return order, nil
	}
	if !co.gateway.VerifySignature(cb.GatewayOrderID, cb.PaymentID, cb.Signature) {
		return nil, ErrPaymentVerification
	}
	if _, err := co.orders.MarkCompleted(ctx, order.ID); err != nil {
		return nil, err
	}
	order.Completed = true
	log.Printf("[checkout] order=%d completed method=online user=%d", order.ID, userID)
	return order, nil
}

// CompletedOrder resolves an order for the success view: it must exist,
// belong to the user, and be completed.
func (co *Coordinator) CompletedOrder(ctx context.Context, userID, orderID int64) (*cart.Snapshot, error) {
	order, err := co.orders.GetOrder(ctx, orderID, userID)
	if err != nil || !order.Completed {
		return nil, ErrNotFound
	}
	return co.carts.OrderSnapshot(ctx, order)
}
