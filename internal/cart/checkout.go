package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
)

var (
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrCheckoutClosed     = errors.New("checkout is no longer awaiting payment")
)

// Backend is the slice of the REST facade checkout needs.
type Backend interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
	CreateOrderPayment(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	VerifyOrderPayment(ctx context.Context, orderID string, conf payment.Confirmation) (*domain.PaymentVerification, error)
}

// CheckoutOptions are the widget settings for the order.
type CheckoutOptions struct {
	Merchant payment.Merchant
}

// Checkout is one combined payment for the cart contents.
type Checkout struct {
	cart    *Cart
	backend Backend

	mu      sync.Mutex
	order   *domain.Order
	options payment.Options
	cont    *payment.Continuation
	busy    bool
}

// Snapshot builds the order payload from the cart lines at their discounted
// unit prices.
func Snapshot(items []domain.CartItem, customer domain.CustomerInfo) domain.OrderRequest {
	lines := make([]domain.OrderLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.OrderLine{
			ProductID:   it.ProductID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice(),
		})
	}
	return domain.OrderRequest{
		Items:        lines,
		TotalAmount:  Total(items),
		CustomerInfo: customer,
	}
}

// BeginCheckout validates the customer form, creates the order and its
// gateway order, and returns the widget options. Nothing is sent to the
// backend when validation fails.
func (c *Cart) BeginCheckout(ctx context.Context, backend Backend, customer domain.CustomerInfo, opts CheckoutOptions) (*Checkout, error) {
	customer = customer.Normalize()
	if err := domain.Validate(customer); err != nil {
		return nil, err
	}
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order, err := backend.CreateOrder(ctx, Snapshot(items, customer))
	if err != nil {
		return nil, err
	}
	gatewayOrder, err := backend.CreateOrderPayment(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	prefill := payment.Prefill{Name: customer.Name, Email: customer.Email, Contact: customer.Phone}
	description := fmt.Sprintf("Order of %d item(s)", Count(items))
	return &Checkout{
		cart:    c,
		backend: backend,
		order:   order,
		options: payment.NewOptions(opts.Merchant, *gatewayOrder, description, prefill),
		cont:    payment.NewContinuation(),
	}, nil
}

// Options returns the widget options for the browser.
func (co *Checkout) Options() payment.Options {
	return co.options
}

// Order returns the created order.
func (co *Checkout) Order() domain.Order {
	co.mu.Lock()
	defer co.mu.Unlock()
	return *co.order
}

// Resolve feeds the widget result. On a verified payment the cart is
// cleared. A dismissal returns payment.ErrDismissed and leaves the cart as
// it was; the created order stays pending.
func (co *Checkout) Resolve(ctx context.Context, res payment.Result) (*domain.Order, error) {
	co.mu.Lock()
	if co.busy {
		co.mu.Unlock()
		return nil, ErrCheckoutClosed
	}
	if err := co.cont.Resolve(res); err != nil {
		co.mu.Unlock()
		return nil, err
	}
	if res.Dismissed {
		co.mu.Unlock()
		return nil, payment.ErrDismissed
	}
	orderID := co.order.ID
	co.busy = true
	co.mu.Unlock()

	verification, err := co.verify(ctx, orderID, res.Confirmation)

	co.mu.Lock()
	defer co.mu.Unlock()
	co.busy = false
	if err != nil {
		return nil, err
	}
	co.order.PaymentStatus = domain.PaymentSuccess
	if verification.PaymentStatus != "" {
		co.order.PaymentStatus = verification.PaymentStatus
	}
	if err := co.cart.Clear(ctx); err != nil {
		return nil, err
	}
	o := *co.order
	return &o, nil
}

func (co *Checkout) verify(ctx context.Context, orderID string, conf payment.Confirmation) (*domain.PaymentVerification, error) {
	if err := domain.Validate(conf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	v, err := co.backend.VerifyOrderPayment(ctx, orderID, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	if !v.Success {
		msg := v.Message
		if msg == "" {
			msg = "payment was not confirmed"
		}
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, msg)
	}
	return v, nil
}
