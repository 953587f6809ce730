package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/slug"
)

var (
	// ErrInvalidSlug is returned when a store slug fails validation.
	ErrInvalidSlug = errors.New("invalid store slug")
	// ErrSlugImmutable is returned when a profile update tries to change
	// the slug, which is fixed at creation.
	ErrSlugImmutable = errors.New("store slug cannot be changed")
)

const initialSubscriptionPeriod = 30 * 24 * time.Hour

// Registry is the authoritative collection of tenant stores. Every write
// goes through it so that subscribers always see a fresh snapshot after
// each committed change.
type Registry struct {
	repo  Repository
	watch *watcher
	now   func() time.Time
}

// NewRegistry creates a Registry over the given repository.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:  repo,
		watch: newWatcher(),
		now:   time.Now,
	}
}

// Create validates and persists a new store aggregate. The profile's ID is
// generated here; the slug is derived from the name when absent. Fails with
// ErrDuplicateSlug or ErrOwnerHasStore on the corresponding conflicts.
func (r *Registry) Create(ctx context.Context, profile StoreProfile, products []Product, orders []Order) (*MerchantStore, error) {
	if strings.TrimSpace(profile.Name) == "" {
		return nil, errors.New("store name is required")
	}
	if profile.UserID == "" {
		return nil, errors.New("store owner identity is required")
	}

	if profile.StoreSlug == "" {
		profile.StoreSlug = slug.Generate(profile.Name)
	}
	if !slug.Validate(profile.StoreSlug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, profile.StoreSlug)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("registry: failed to generate store id: %w", err)
	}
	profile.ID = id.String()

	if profile.SubscriptionStatus == "" {
		profile.SubscriptionStatus = SubscriptionActive
	}
	if profile.ExpiryDate == 0 {
		profile.ExpiryDate = r.now().Add(initialSubscriptionPeriod).UnixMilli()
	}

	s := MerchantStore{Profile: profile, Products: products, Orders: orders}
	if err := r.repo.Create(ctx, &s); err != nil {
		if errors.Is(err, ErrDuplicateSlug) || errors.Is(err, ErrOwnerHasStore) {
			log.Warn().Err(err).Str("slug", profile.StoreSlug).Str("user_id", profile.UserID).Msg("registry: store creation rejected")
			return nil, err
		}
		log.Error().Err(err).Str("slug", profile.StoreSlug).Msg("registry: failed to create store")
		return nil, fmt.Errorf("registry: failed to create store: %w", err)
	}

	log.Info().Str("store_id", profile.ID).Str("slug", profile.StoreSlug).Msg("registry: store created")
	r.notifyAll(ctx)
	return &s, nil
}

// GetByID returns the current aggregate or ErrNotFound.
func (r *Registry) GetByID(ctx context.Context, id string) (*MerchantStore, error) {
	return r.repo.GetByID(ctx, id)
}

// GetBySlug returns the current aggregate or ErrNotFound. Slugs are stored
// lowercase, so lookups are lowercased to keep store/lookup symmetry exact.
func (r *Registry) GetBySlug(ctx context.Context, s string) (*MerchantStore, error) {
	return r.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(s)))
}

// List returns every store aggregate.
func (r *Registry) List(ctx context.Context) ([]MerchantStore, error) {
	return r.repo.List(ctx)
}

// SubscribeAll registers cb and immediately invokes it with the full
// current list, then again after every subsequent change to any store.
func (r *Registry) SubscribeAll(ctx context.Context, cb Listener) (Unsubscribe, error) {
	stores, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry: failed to load initial snapshot: %w", err)
	}
	unsub := r.watch.subscribe(cb)
	notify(cb, stores)
	return unsub, nil
}

// UpdateProfile replaces the store's profile sub-tree. Identity fields are
// pinned: ID and UserID are taken from the current profile, and a slug
// change is rejected with ErrSlugImmutable.
func (r *Registry) UpdateProfile(ctx context.Context, id string, p StoreProfile) error {
	current, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.StoreSlug != "" && p.StoreSlug != current.Profile.StoreSlug {
		return ErrSlugImmutable
	}
	p.ID = current.Profile.ID
	p.UserID = current.Profile.UserID
	p.StoreSlug = current.Profile.StoreSlug

	if err := r.repo.UpdateProfile(ctx, id, p); err != nil {
		log.Error().Err(err).Str("store_id", id).Msg("registry: failed to update profile")
		return fmt.Errorf("registry: failed to update profile: %w", err)
	}
	r.notifyAll(ctx)
	return nil
}

// UpdateProducts replaces the catalog sub-tree.
func (r *Registry) UpdateProducts(ctx context.Context, id string, products []Product) error {
	if err := r.repo.UpdateProducts(ctx, id, products); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("registry: failed to update products: %w", err)
	}
	r.notifyAll(ctx)
	return nil
}

// UpdateOrders replaces the order sub-tree.
func (r *Registry) UpdateOrders(ctx context.Context, id string, orders []Order) error {
	if err := r.repo.UpdateOrders(ctx, id, orders); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("registry: failed to update orders: %w", err)
	}
	r.notifyAll(ctx)
	return nil
}

// Replace writes the whole aggregate back. Prefer the field-scoped updates;
// this exists for the rare whole-store edit.
func (r *Registry) Replace(ctx context.Context, s MerchantStore) error {
	if err := r.repo.Replace(ctx, s); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("registry: failed to replace store: %w", err)
	}
	r.notifyAll(ctx)
	return nil
}

// AppendOrder atomically prepends ord to the store's order list.
func (r *Registry) AppendOrder(ctx context.Context, storeID string, ord Order) error {
	if err := r.repo.AppendOrder(ctx, storeID, ord); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("registry: failed to append order: %w", err)
	}
	r.notifyAll(ctx)
	return nil
}

// SetOrderStatus updates one order's status; a missing order id reports
// found=false without error.
func (r *Registry) SetOrderStatus(ctx context.Context, storeID, orderID string, status OrderStatus) (bool, error) {
	found, err := r.repo.SetOrderStatus(ctx, storeID, orderID, status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("registry: failed to set order status: %w", err)
	}
	if found {
		r.notifyAll(ctx)
	}
	return found, nil
}

// AddProduct atomically prepends p to the catalog, enforcing the plan
// ceiling inside the same write.
func (r *Registry) AddProduct(ctx context.Context, storeID string, p Product, limit int) error {
	if err := r.repo.AddProduct(ctx, storeID, p, limit); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPlanLimitReached) {
			return err
		}
		return fmt.Errorf("registry: failed to add product: %w", err)
	}
	r.notifyAll(ctx)
	return nil
}

// RemoveProduct deletes by product id; removing a missing id is a no-op.
func (r *Registry) RemoveProduct(ctx context.Context, storeID, productID string) error {
	if err := r.repo.RemoveProduct(ctx, storeID, productID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("registry: failed to remove product: %w", err)
	}
	r.notifyAll(ctx)
	return nil
}

func (r *Registry) notifyAll(ctx context.Context) {
	stores, err := r.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("registry: failed to list stores for snapshot fan-out")
		return
	}
	r.watch.publish(stores)
}
