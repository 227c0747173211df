package domain

// CartItem is one line in the persisted cart.
type CartItem struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price" validate:"gte=0"`
	Discount  float64 `json:"discount" validate:"gte=0,lte=100"` // percentage
	Quantity  int     `json:"quantity" validate:"gte=1"`
	Category  string  `json:"category,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// UnitPrice is the price after the per-item discount.
func (c CartItem) UnitPrice() float64 {
	return c.Price * (1 - c.Discount/100)
}

// LineTotal is the discounted unit price times the quantity.
func (c CartItem) LineTotal() float64 {
	return c.UnitPrice() * float64(c.Quantity)
}
