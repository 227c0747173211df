package payment

import (
	"errors"
	"testing"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

func TestContinuationFirstResultWins(t *testing.T) {
	conf := Confirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}

	c := NewContinuation()
	if err := c.Resolve(Succeeded(conf)); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if err := c.Resolve(Dismissal()); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved after success, got %v", err)
	}

	c = NewContinuation()
	if err := c.Resolve(Dismissal()); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if err := c.Resolve(Succeeded(conf)); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved after dismissal, got %v", err)
	}
}

func TestNewOptionsPrefersBackendKeyAndCurrency(t *testing.T) {
	m := Merchant{KeyID: "rzp_default", Name: "FitSphere", Currency: "INR", ThemeColor: "#000"}

	opts := NewOptions(m, domain.PaymentOrder{GatewayOrderID: "order_9", Amount: 120000, KeyID: "rzp_live"}, "Program", Prefill{Name: "Asha"})
	if opts.Key != "rzp_live" {
		t.Fatalf("expected backend key, got %q", opts.Key)
	}
	if opts.Currency != "INR" {
		t.Fatalf("expected merchant currency fallback, got %q", opts.Currency)
	}
	if opts.OrderID != "order_9" || opts.Amount != 120000 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
