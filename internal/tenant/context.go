// Package tenant tracks which single store the current session is inside.
// It holds no store data of its own: it keeps the latest registry snapshot
// and re-resolves the active store from it on every read, so it can never
// diverge from the registry.
package tenant

import (
	"context"
	"fmt"
	"sync"

	"github.com/swiftcart/storefront-platform/internal/cart"
	"github.com/swiftcart/storefront-platform/internal/session"
	"github.com/swiftcart/storefront-platform/internal/store"
)

// Context is the active-tenant resolver for one client session.
type Context struct {
	session  *session.Manager
	carts    *cart.Engine
	registry *store.Registry

	mu       sync.RWMutex
	snapshot []store.MerchantStore
	unsub    store.Unsubscribe
}

// New subscribes to the registry and returns a ready Context. Close must be
// called when the session ends.
func New(ctx context.Context, registry *store.Registry, sess *session.Manager, carts *cart.Engine) (*Context, error) {
	c := &Context{session: sess, carts: carts, registry: registry}

	unsub, err := registry.SubscribeAll(ctx, func(stores []store.MerchantStore) {
		// every snapshot is authoritative-as-of-now; replace, never diff
		c.mu.Lock()
		c.snapshot = stores
		c.mu.Unlock()
	})
	if err != nil {
		return nil, fmt.Errorf("tenant: failed to subscribe to registry: %w", err)
	}
	c.unsub = unsub
	return c, nil
}

// Active re-resolves the stored selection against the latest registry
// snapshot. A dangling pointer (store since removed, or never valid)
// resolves to not-found without clearing the selection.
func (c *Context) Active() (*store.MerchantStore, bool) {
	id, ok := c.session.ActiveStoreID()
	if !ok {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.snapshot {
		if c.snapshot[i].Profile.ID == id {
			s := c.snapshot[i].Clone()
			return &s, true
		}
	}
	return nil, false
}

// EnterByID makes storeID the active tenant after verifying it exists.
func (c *Context) EnterByID(ctx context.Context, storeID string) (*store.MerchantStore, error) {
	s, err := c.registry.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	c.session.EnterStore(s.Profile.ID)
	return s, nil
}

// EnterBySlug resolves a URL slug to a store and makes it active.
func (c *Context) EnterBySlug(ctx context.Context, slug string) (*store.MerchantStore, error) {
	s, err := c.registry.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.session.EnterStore(s.Profile.ID)
	return s, nil
}

// Exit leaves the active store, discarding its cart. Carts never merge
// across stores, so leaving always destroys the current one.
func (c *Context) Exit(ctx context.Context) error {
	id, ok := c.session.ActiveStoreID()
	if !ok {
		return nil
	}
	sessionID, err := c.session.SessionID()
	if err != nil {
		return err
	}
	if err := c.carts.Clear(ctx, cart.Key{StoreID: id, SessionID: sessionID}); err != nil {
		return err
	}
	c.session.ExitStore()
	return nil
}

// Close detaches the registry subscription.
func (c *Context) Close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
}
