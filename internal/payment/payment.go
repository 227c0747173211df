// Package payment describes the hosted checkout widget contract. The widget
// runs in the browser; the dashboard only prepares its options and receives
// the result it reports back.
package payment

import (
	"errors"
	"sync"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

var (
	// ErrDismissed is the soft outcome of a user closing the widget without paying.
	ErrDismissed       = errors.New("payment cancelled")
	ErrAlreadyResolved = errors.New("payment result already received")
)

// Prefill is the contact info shown in the widget.
type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Theme of the widget.
type Theme struct {
	Color string `json:"color,omitempty"`
}

// Options is the configuration object the browser opens the widget with.
// handler and modal.ondismiss are bound client side and post back to the
// dashboard's result endpoints.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Merchant holds the static parts of Options.
type Merchant struct {
	KeyID      string
	Name       string
	Currency   string
	ThemeColor string
}

// NewOptions combines a gateway order handle with merchant settings.
// Backend supplied key and currency take precedence.
func NewOptions(m Merchant, order domain.PaymentOrder, description string, prefill Prefill) Options {
	key := order.KeyID
	if key == "" {
		key = m.KeyID
	}
	currency := order.Currency
	if currency == "" {
		currency = m.Currency
	}
	return Options{
		Key:         key,
		Amount:      order.Amount,
		Currency:    currency,
		Name:        m.Name,
		Description: description,
		OrderID:     order.GatewayOrderID,
		Prefill:     prefill,
		Theme:       Theme{Color: m.ThemeColor},
	}
}

// Confirmation is the signed result the widget hands to its handler. It is
// forwarded verbatim to the verify endpoints.
type Confirmation struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// Result is what came back from the widget: a confirmation or a dismissal.
type Result struct {
	Dismissed    bool
	Confirmation Confirmation
}

// Succeeded builds a success result.
func Succeeded(c Confirmation) Result { return Result{Confirmation: c} }

// Dismissal builds a dismissal result.
func Dismissal() Result { return Result{Dismissed: true} }

// Continuation is a single-shot slot for the widget result. Success and
// dismissal are mutually exclusive: whichever arrives first wins.
type Continuation struct {
	once   sync.Once
	result Result
}

// NewContinuation creates an unresolved continuation.
func NewContinuation() *Continuation {
	return &Continuation{}
}

// Resolve stores the result. A second call returns ErrAlreadyResolved.
func (c *Continuation) Resolve(r Result) error {
	resolved := false
	c.once.Do(func() {
		c.result = r
		resolved = true
	})
	if !resolved {
		return ErrAlreadyResolved
	}
	return nil
}
