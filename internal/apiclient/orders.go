package apiclient

import (
	"context"
	"net/http"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
)

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, call{method: http.MethodPost, route: "/api/orders", path: "/api/orders", body: req}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrderPayment obtains the gateway order handle for a created order.
func (c *Client) CreateOrderPayment(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	var out domain.PaymentOrder
	body := map[string]string{"order_id": orderID}
	err := c.do(ctx, call{method: http.MethodPost, route: "/api/orders/create-payment-order", path: "/api/orders/create-payment-order", body: body}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type orderVerification struct {
	OrderID string `json:"order_id"`
	payment.Confirmation
}

// VerifyOrderPayment forwards the widget confirmation with the order id.
func (c *Client) VerifyOrderPayment(ctx context.Context, orderID string, conf payment.Confirmation) (*domain.PaymentVerification, error) {
	var out domain.PaymentVerification
	body := orderVerification{OrderID: orderID, Confirmation: conf}
	err := c.do(ctx, call{method: http.MethodPost, route: "/api/orders/verify-payment", path: "/api/orders/verify-payment", body: body}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MyOrders is the member's order history.
func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/orders/user/history", path: "/api/orders/user/history"}, &out)
	return out, err
}

// AllOrders lists every order (admin).
func (c *Client) AllOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/orders", path: "/api/orders"}, &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	var out domain.Order
	body := map[string]domain.OrderStatus{"order_status": status}
	err := c.do(ctx, call{method: http.MethodPatch, route: "/api/orders/{id}/status", path: "/api/orders/" + pathEscape(id) + "/status", body: body}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportOrdersCSV downloads the backend's CSV export as is.
func (c *Client) ExportOrdersCSV(ctx context.Context) ([]byte, error) {
	return c.send(ctx, call{method: http.MethodGet, route: "/api/orders/export/csv", path: "/api/orders/export/csv"})
}
