// Package order converts carts into immutable order records and drives the
// pending → shipped → delivered progression under the cash-on-delivery
// model.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/cart"
	"github.com/swiftcart/storefront-platform/internal/store"
)

// DefaultShippingFee is the flat COD shipping charge in whole Rupees.
const DefaultShippingFee int64 = 200

// orderIDPrefix keeps order ids human-scannable; the UUID behind it is the
// uniqueness mechanism.
const orderIDPrefix = "SWIFT-"

var (
	// ErrEmptyCart rejects checkout on a cart with no items.
	ErrEmptyCart = errors.New("cannot place an order from an empty cart")
	// ErrInvalidStatus rejects unknown order status values.
	ErrInvalidStatus = errors.New("invalid order status")
)

// Notifier hands a placed order off to an external channel. It is
// best-effort: failures are logged, never propagated, and never roll the
// order back.
type Notifier interface {
	OrderPlaced(storeProfile store.StoreProfile, ord store.Order)
}

// Service is the order lifecycle engine.
type Service struct {
	registry    *store.Registry
	carts       *cart.Engine
	notifier    Notifier
	shippingFee int64
	now         func() time.Time
}

// NewService creates the lifecycle service. notifier may be nil;
// shippingFee <= 0 falls back to DefaultShippingFee.
func NewService(registry *store.Registry, carts *cart.Engine, notifier Notifier, shippingFee int64) *Service {
	if shippingFee <= 0 {
		shippingFee = DefaultShippingFee
	}
	return &Service{
		registry:    registry,
		carts:       carts,
		notifier:    notifier,
		shippingFee: shippingFee,
		now:         time.Now,
	}
}

// Place converts the session's cart for storeID into a new order: snapshots
// the items, freezes subtotal + flat shipping, prepends the order to the
// store (newest-first), then clears the cart. The append is atomic, so two
// concurrent placements against the same store both end up represented.
func (s *Service) Place(ctx context.Context, storeID, sessionID string, customer store.Customer) (*store.Order, error) {
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	key := cart.Key{StoreID: storeID, SessionID: sessionID}
	items, err := s.carts.Items(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("order: failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("order: failed to generate order id: %w", err)
	}

	snapshot := make([]store.CartItem, len(items))
	copy(snapshot, items)

	ord := store.Order{
		ID:        orderIDPrefix + strings.ToUpper(id.String()),
		Items:     snapshot,
		Customer:  customer,
		Total:     cart.Subtotal(snapshot) + s.shippingFee,
		Status:    store.OrderPending,
		CreatedAt: s.now().UnixMilli(),
	}

	if err := s.registry.AppendOrder(ctx, storeID, ord); err != nil {
		log.Error().Err(err).Str("store_id", storeID).Msg("order: failed to append order")
		return nil, err
	}

	if err := s.carts.Clear(ctx, key); err != nil {
		// The order is committed; a stale cart is recoverable on the next
		// mutation, so surface nothing worse than a log line.
		log.Error().Err(err).Str("store_id", storeID).Str("order_id", ord.ID).Msg("order: failed to clear cart after placement")
	}

	storeState, err := s.registry.GetByID(ctx, storeID)
	if err != nil {
		log.Warn().Err(err).Str("store_id", storeID).Str("order_id", ord.ID).Msg("order: failed to reload store, skipping handoff")
	} else if s.notifier != nil {
		s.notifier.OrderPlaced(storeState.Profile, ord)
	}

	log.Info().Str("store_id", storeID).Str("order_id", ord.ID).Int64("total", ord.Total).Msg("order: placed")
	return &ord, nil
}

// UpdateStatus reassigns an order's status. The admin surface may set any
// of the three values directly; unknown values are rejected. A missing
// order id reports found=false without error.
func (s *Service) UpdateStatus(ctx context.Context, storeID, orderID string, status store.OrderStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	found, err := s.registry.SetOrderStatus(ctx, storeID, orderID, status)
	if err != nil {
		return false, err
	}
	if !found {
		log.Warn().Str("store_id", storeID).Str("order_id", orderID).Msg("order: status update for unknown order id")
		return false, nil
	}
	log.Info().Str("store_id", storeID).Str("order_id", orderID).Str("status", status.String()).Msg("order: status updated")
	return true, nil
}

// Track scans every store for an order with the given id, for the public
// order-tracking view. Returns the order, the owning store's profile, and
// ErrNotFound when no store holds it.
func (s *Service) Track(ctx context.Context, orderID string) (*store.Order, *store.StoreProfile, error) {
	stores, err := s.registry.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("order: failed to list stores for tracking: %w", err)
	}

	needle := strings.ToUpper(strings.TrimSpace(orderID))
	for _, st := range stores {
		for i := range st.Orders {
			if strings.ToUpper(st.Orders[i].ID) == needle {
				ord := st.Orders[i]
				profile := st.Profile
				return &ord, &profile, nil
			}
		}
	}
	return nil, nil, store.ErrNotFound
}

func validateCustomer(c store.Customer) error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required customer fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
