// Package cart is the per-tenant, per-session shopping cart engine. A cart
// is keyed by (storeID, sessionID) and is never shared across sessions, so
// it needs no cross-client coordination, only durable saves on every
// mutation so a reload never loses cart state.
package cart

import (
	"context"
	"fmt"

	"github.com/swiftcart/storefront-platform/internal/store"
)

// Key identifies one cart document.
type Key struct {
	StoreID   string
	SessionID string
}

func (k Key) String() string {
	return fmt.Sprintf("%s_%s", k.StoreID, k.SessionID)
}

// Repository is the persistence contract for cart documents. Get on a
// missing key returns an empty cart, not an error: a cart exists implicitly
// from the first add.
type Repository interface {
	Get(ctx context.Context, key Key) ([]store.CartItem, error)
	Save(ctx context.Context, key Key, items []store.CartItem) error
	Delete(ctx context.Context, key Key) error
}
