package domain

import (
	"strings"
	"time"
)

// OrderStatus tracks fulfilment.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// CustomerInfo is collected on the checkout form.
type CustomerInfo struct {
	Name    string `json:"customer_name" validate:"required"`
	Email   string `json:"customer_email" validate:"required,email"`
	Phone   string `json:"customer_phone" validate:"required,phone"`
	Address string `json:"customer_address" validate:"required"`
}

// Normalize trims the form fields.
func (c CustomerInfo) Normalize() CustomerInfo {
	return CustomerInfo{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

// OrderLine is a snapshot of a cart line at its discounted unit price.
type OrderLine struct {
	ProductID   string  `json:"product_id" validate:"required"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// OrderRequest is the create-order payload.
type OrderRequest struct {
	Items       []OrderLine `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	CustomerInfo
}

// Order as returned by the backend.
type Order struct {
	ID            string        `json:"id" validate:"required"`
	UserID        string        `json:"user_id,omitempty"`
	Items         []OrderLine   `json:"items"`
	TotalAmount   float64       `json:"total_amount" validate:"gte=0"`
	Name          string        `json:"customer_name"`
	Email         string        `json:"customer_email"`
	Phone         string        `json:"customer_phone"`
	Address       string        `json:"customer_address"`
	PaymentStatus PaymentStatus `json:"payment_status" validate:"omitempty,oneof=pending success failed"`
	OrderStatus   OrderStatus   `json:"order_status"`
	CreatedAt     time.Time     `json:"created_at,omitempty"`
}
