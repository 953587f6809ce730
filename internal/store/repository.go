package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by lookups with no matching store.
	ErrNotFound = errors.New("store not found")
	// ErrDuplicateSlug is returned when a new store's slug is already taken.
	ErrDuplicateSlug = errors.New("store slug already exists")
	// ErrOwnerHasStore enforces the one-store-per-merchant rule.
	ErrOwnerHasStore = errors.New("owner already has a store")
	// ErrPlanLimitReached is returned when a catalog add would exceed the
	// store's plan ceiling.
	ErrPlanLimitReached = errors.New("plan product limit reached")
)

// Repository is the persistence contract for store aggregates. Updates are
// field-scoped: profile, products and orders change independently, and the
// append/set/add/remove operations must be atomic with respect to
// concurrent writers so that two clients editing disjoint sub-trees never
// clobber each other.
type Repository interface {
	Create(ctx context.Context, s *MerchantStore) error
	GetByID(ctx context.Context, id string) (*MerchantStore, error)
	GetBySlug(ctx context.Context, slug string) (*MerchantStore, error)
	List(ctx context.Context) ([]MerchantStore, error)

	UpdateProfile(ctx context.Context, id string, p StoreProfile) error
	UpdateProducts(ctx context.Context, id string, products []Product) error
	UpdateOrders(ctx context.Context, id string, orders []Order) error
	Replace(ctx context.Context, s MerchantStore) error

	// AppendOrder prepends ord to the store's order list (newest-first).
	AppendOrder(ctx context.Context, storeID string, ord Order) error
	// SetOrderStatus updates one order's status. A missing order id is not
	// an error: found reports whether anything changed.
	SetOrderStatus(ctx context.Context, storeID, orderID string, status OrderStatus) (found bool, err error)
	// AddProduct prepends p to the catalog unless the catalog already holds
	// limit products, in which case it returns ErrPlanLimitReached.
	AddProduct(ctx context.Context, storeID string, p Product, limit int) error
	// RemoveProduct deletes by product id. Removing a missing id is a no-op.
	RemoveProduct(ctx context.Context, storeID, productID string) error
}
