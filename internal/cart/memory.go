package cart

import (
	"context"
	"sync"

	"github.com/swiftcart/storefront-platform/internal/store"
)

type memoryRepository struct {
	mu    sync.RWMutex
	carts map[Key][]store.CartItem
}

// NewMemoryRepository returns an in-process Repository for tests and the
// database-less dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{carts: make(map[Key][]store.CartItem)}
}

func (r *memoryRepository) Get(_ context.Context, k Key) ([]store.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]store.CartItem(nil), r.carts[k]...), nil
}

func (r *memoryRepository) Save(_ context.Context, k Key, items []store.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[k] = append([]store.CartItem(nil), items...)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, k Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, k)
	return nil
}
