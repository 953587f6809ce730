package cart

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/store"
)

// Engine applies cart mutations and persists the full cart document after
// every change. Line order is insertion order; it matters for display only.
type Engine struct {
	repo Repository
}

// NewEngine creates an Engine over the given repository.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Items returns the current cart contents. A cart that was never written is
// empty, not missing.
func (e *Engine) Items(ctx context.Context, key Key) ([]store.CartItem, error) {
	return e.repo.Get(ctx, key)
}

// AddItem merges by product id: an existing line gains quantity 1,
// otherwise a new line with quantity 1 is appended.
func (e *Engine) AddItem(ctx context.Context, key Key, p store.Product) ([]store.CartItem, error) {
	items, err := e.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if items[i].ID == p.ID {
			items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, store.CartItem{Product: p, Quantity: 1})
	}

	if err := e.repo.Save(ctx, key, items); err != nil {
		log.Error().Err(err).Str("cart", key.String()).Msg("cart: failed to persist add")
		return nil, err
	}
	return items, nil
}

// UpdateQuantity adjusts a line's quantity by delta, clamped to a minimum
// of 1. Removing a line requires RemoveItem; this operation can never drive
// a quantity to zero. Unknown product ids are left untouched.
func (e *Engine) UpdateQuantity(ctx context.Context, key Key, productID string, delta int) ([]store.CartItem, error) {
	items, err := e.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	changed := false
	for i := range items {
		if items[i].ID == productID {
			q := items[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			changed = items[i].Quantity != q
			items[i].Quantity = q
			break
		}
	}
	if !changed {
		return items, nil
	}

	if err := e.repo.Save(ctx, key, items); err != nil {
		return nil, fmt.Errorf("cart: failed to persist quantity update: %w", err)
	}
	return items, nil
}

// RemoveItem deletes the line entirely.
func (e *Engine) RemoveItem(ctx context.Context, key Key, productID string) ([]store.CartItem, error) {
	items, err := e.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	kept := items[:0:0]
	for _, item := range items {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return items, nil
	}

	if err := e.repo.Save(ctx, key, kept); err != nil {
		return nil, fmt.Errorf("cart: failed to persist removal: %w", err)
	}
	return kept, nil
}

// Clear empties the cart. Called after successful checkout and on exiting
// a store.
func (e *Engine) Clear(ctx context.Context, key Key) error {
	if err := e.repo.Delete(ctx, key); err != nil {
		log.Error().Err(err).Str("cart", key.String()).Msg("cart: failed to clear cart")
		return err
	}
	return nil
}

// TotalQuantity sums per-line quantities, for badge display.
func TotalQuantity(items []store.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums price×quantity over all lines.
func Subtotal(items []store.CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}
