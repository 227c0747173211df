// Package cart keeps the shop cart of one browser session and runs the
// combined checkout for it.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
)

var ErrItemNotFound = errors.New("item is not in the cart")

// Cart is the persisted cart of one session. Every mutation is a
// read-modify-write of the whole line list; concurrent writers race and the
// last write wins.
type Cart struct {
	store repository.StateStore
	sid   string
}

// New returns the cart stored under sid.
func New(store repository.StateStore, sid string) *Cart {
	return &Cart{store: store, sid: sid}
}

// Items returns the current lines. An absent or unreadable cart is empty.
func (c *Cart) Items(ctx context.Context) ([]domain.CartItem, error) {
	raw, err := c.store.Get(ctx, c.sid, repository.KeyCart)
	if errors.Is(err, repository.ErrNotFound) {
		return []domain.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return []domain.CartItem{}, nil
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

func (c *Cart) save(ctx context.Context, items []domain.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.sid, repository.KeyCart, raw); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Add puts one unit of product in the cart, merging with an existing line.
func (c *Cart) Add(ctx context.Context, p domain.Product) ([]domain.CartItem, error) {
	if p.ID == "" {
		return nil, domain.NewValidationError("product_id", "is required")
	}
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	merged := false
	for i := range items {
		if items[i].ProductID == p.ID {
			items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, domain.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Discount:  p.Discount,
			Quantity:  1,
			Category:  p.Category,
			ImageURL:  p.ImageURL,
		})
	}
	return items, c.save(ctx, items)
}

// UpdateQuantity changes a line by delta. Quantity never drops below one;
// use Remove to take the line out.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, delta int) ([]domain.CartItem, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = max(1, addQuantity(items[i].Quantity, delta))
			return items, c.save(ctx, items)
		}
	}
	return nil, ErrItemNotFound
}

// addQuantity saturates at math.MaxInt instead of wrapping.
func addQuantity(q, delta int) int {
	if delta > 0 && q > math.MaxInt-delta {
		return math.MaxInt
	}
	return q + delta
}

// Remove drops the line for productID. Removing a missing line is a no-op.
func (c *Cart) Remove(ctx context.Context, productID string) ([]domain.CartItem, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	return kept, c.save(ctx, kept)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, c.sid, repository.KeyCart)
}

// Total is the sum of the discounted line totals.
func Total(items []domain.CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// Count is the number of units in the cart.
func Count(items []domain.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
