package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository/memory"
)

type stubBackend struct {
	orderReq     *domain.OrderRequest
	orderCalls   int
	paymentCalls int
	verifyCalls  int
	verifyResult *domain.PaymentVerification
	verifyErr    error
}

func (s *stubBackend) CreateOrder(_ context.Context, req domain.OrderRequest) (*domain.Order, error) {
	s.orderCalls++
	s.orderReq = &req
	return &domain.Order{ID: "ord-1", Items: req.Items, TotalAmount: req.TotalAmount, PaymentStatus: domain.PaymentPending}, nil
}

func (s *stubBackend) CreateOrderPayment(_ context.Context, orderID string) (*domain.PaymentOrder, error) {
	s.paymentCalls++
	return &domain.PaymentOrder{GatewayOrderID: "order_" + orderID, Amount: 120000, Currency: "INR"}, nil
}

func (s *stubBackend) VerifyOrderPayment(_ context.Context, _ string, _ payment.Confirmation) (*domain.PaymentVerification, error) {
	s.verifyCalls++
	if s.verifyResult == nil {
		return &domain.PaymentVerification{Success: true}, s.verifyErr
	}
	return s.verifyResult, s.verifyErr
}

var (
	dumbbells = domain.Product{ID: "p1", Name: "Dumbbells", Price: 500, Discount: 10}
	mat       = domain.Product{ID: "p2", Name: "Yoga Mat", Price: 300}
	customer  = domain.CustomerInfo{Name: "Asha", Email: "asha@example.com", Phone: "+919876543210", Address: "12 MG Road"}
	confirmed = payment.Confirmation{OrderID: "order_ord-1", PaymentID: "pay_1", Signature: "sig"}
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func newCart(t *testing.T) *Cart {
	t.Helper()
	return New(memory.NewStateRepository(), "sid-1")
}

func TestAddMergesLines(t *testing.T) {
	c := newCart(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Add(ctx, mat); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	items, err := c.Items(ctx)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("expected one line with quantity 3, got %+v", items)
	}
}

func TestTotalAppliesDiscount(t *testing.T) {
	items := []domain.CartItem{
		{ProductID: "p1", Price: 500, Discount: 10, Quantity: 2},
		{ProductID: "p2", Price: 300, Quantity: 1},
	}
	if got := Total(items); !almostEqual(got, 1200) {
		t.Fatalf("expected 1200, got %v", got)
	}
	if got := Total(nil); got != 0 {
		t.Fatalf("expected 0 for empty cart, got %v", got)
	}
}

func TestUpdateQuantityFloorsAtOne(t *testing.T) {
	c := newCart(t)
	ctx := context.Background()
	_, _ = c.Add(ctx, dumbbells)
	_, _ = c.Add(ctx, dumbbells)

	items, err := c.UpdateQuantity(ctx, "p1", -5)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", items[0].Quantity)
	}
	if _, err := c.UpdateQuantity(ctx, "missing", 1); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestUpdateQuantityHugeDeltaDoesNotWrap(t *testing.T) {
	c := newCart(t)
	ctx := context.Background()
	_, _ = c.Add(ctx, dumbbells)

	items, err := c.UpdateQuantity(ctx, "p1", math.MaxInt)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if items[0].Quantity != math.MaxInt {
		t.Fatalf("expected saturated quantity, got %d", items[0].Quantity)
	}

	items, _ = c.UpdateQuantity(ctx, "p1", math.MinInt)
	if items[0].Quantity != 1 {
		t.Fatalf("expected floor of 1, got %d", items[0].Quantity)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := newCart(t)
	ctx := context.Background()
	_, _ = c.Add(ctx, dumbbells)
	_, _ = c.Add(ctx, mat)

	items, err := c.Remove(ctx, "p1")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "p2" {
		t.Fatalf("unexpected items %+v", items)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	items, _ = c.Items(ctx)
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestCorruptCartReadsEmpty(t *testing.T) {
	store := memory.NewStateRepository()
	ctx := context.Background()
	_ = store.Set(ctx, "sid-1", repository.KeyCart, []byte("{not json"))

	items, err := New(store, "sid-1").Items(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v %v", items, err)
	}
}

func TestCheckoutRejectsInvalidCustomer(t *testing.T) {
	c := newCart(t)
	ctx := context.Background()
	_, _ = c.Add(ctx, mat)
	backend := &stubBackend{}

	bad := customer
	bad.Email = "not-an-email"
	_, err := c.BeginCheckout(ctx, backend, bad, CheckoutOptions{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "customer_email" {
		t.Fatalf("expected customer_email validation error, got %v", err)
	}

	bad = customer
	bad.Phone = "12ab"
	if _, err := c.BeginCheckout(ctx, backend, bad, CheckoutOptions{}); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for phone, got %v", err)
	}
	if backend.orderCalls != 0 {
		t.Fatalf("create-order must not be called, got %d", backend.orderCalls)
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	c := newCart(t)
	if _, err := c.BeginCheckout(context.Background(), &stubBackend{}, customer, CheckoutOptions{}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutSnapshotsDiscountedPrices(t *testing.T) {
	c := newCart(t)
	ctx := context.Background()
	_, _ = c.Add(ctx, dumbbells)
	_, _ = c.Add(ctx, dumbbells)
	_, _ = c.Add(ctx, mat)
	backend := &stubBackend{}

	co, err := c.BeginCheckout(ctx, backend, customer, CheckoutOptions{Merchant: payment.Merchant{KeyID: "rzp_test", Name: "FitSphere"}})
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	req := backend.orderReq
	if !almostEqual(req.TotalAmount, 1200) {
		t.Fatalf("expected total 1200, got %v", req.TotalAmount)
	}
	if !almostEqual(req.Items[0].Price, 450) || req.Items[0].Quantity != 2 {
		t.Fatalf("unexpected first line %+v", req.Items[0])
	}
	if req.Email != "asha@example.com" {
		t.Fatalf("customer info not sent: %+v", req.CustomerInfo)
	}
	opts := co.Options()
	if opts.OrderID != "order_ord-1" || opts.Prefill.Contact != customer.Phone {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestCheckoutDismissKeepsCart(t *testing.T) {
	c := newCart(t)
	ctx := context.Background()
	_, _ = c.Add(ctx, mat)
	backend := &stubBackend{}

	co, err := c.BeginCheckout(ctx, backend, customer, CheckoutOptions{})
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if _, err := co.Resolve(ctx, payment.Dismissal()); !errors.Is(err, payment.ErrDismissed) {
		t.Fatalf("expected ErrDismissed, got %v", err)
	}
	items, _ := c.Items(ctx)
	if len(items) != 1 {
		t.Fatalf("cart must survive a dismissal, got %+v", items)
	}
	if backend.verifyCalls != 0 {
		t.Fatal("dismissal must not verify")
	}
	if _, err := co.Resolve(ctx, payment.Succeeded(confirmed)); !errors.Is(err, payment.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestCheckoutVerifiedSuccessClearsCart(t *testing.T) {
	c := newCart(t)
	ctx := context.Background()
	_, _ = c.Add(ctx, mat)
	backend := &stubBackend{}

	co, err := c.BeginCheckout(ctx, backend, customer, CheckoutOptions{})
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	order, err := co.Resolve(ctx, payment.Succeeded(confirmed))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if order.PaymentStatus != domain.PaymentSuccess {
		t.Fatalf("expected success, got %s", order.PaymentStatus)
	}
	items, _ := c.Items(ctx)
	if len(items) != 0 {
		t.Fatalf("cart should be cleared, got %+v", items)
	}
}

func TestCheckoutVerificationFailureKeepsCart(t *testing.T) {
	c := newCart(t)
	ctx := context.Background()
	_, _ = c.Add(ctx, mat)
	backend := &stubBackend{verifyResult: &domain.PaymentVerification{Success: false}}

	co, err := c.BeginCheckout(ctx, backend, customer, CheckoutOptions{})
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if _, err := co.Resolve(ctx, payment.Succeeded(confirmed)); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	items, _ := c.Items(ctx)
	if len(items) != 1 {
		t.Fatalf("cart must survive a failed verification, got %+v", items)
	}
}
