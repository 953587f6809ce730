// Package billing gates public storefront availability on the store's
// subscription status. Owner dashboard access is never gated here;
// reactivation is a manual status flip, there is no billing engine.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/store"
)

// ErrStoreUnavailable short-circuits storefront-facing operations against
// an expired store.
var ErrStoreUnavailable = errors.New("store unavailable: subscription expired")

const renewalPeriod = 30 * 24 * time.Hour

// Browsable reports whether the public storefront is open to shoppers.
func Browsable(p store.StoreProfile) bool {
	return p.SubscriptionStatus == store.SubscriptionActive
}

// EnsureBrowsable is the mutation-boundary form of Browsable.
func EnsureBrowsable(p store.StoreProfile) error {
	if !Browsable(p) {
		return ErrStoreUnavailable
	}
	return nil
}

// Gate flips subscription state through the registry.
type Gate struct {
	registry *store.Registry
	now      func() time.Time
}

// NewGate creates a Gate.
func NewGate(registry *store.Registry) *Gate {
	return &Gate{registry: registry, now: time.Now}
}

// Renew reactivates the store and pushes the billing cursor out by one
// renewal period.
func (g *Gate) Renew(ctx context.Context, storeID string) error {
	s, err := g.registry.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	p := s.Profile
	p.SubscriptionStatus = store.SubscriptionActive
	p.ExpiryDate = g.now().Add(renewalPeriod).UnixMilli()
	if err := g.registry.UpdateProfile(ctx, storeID, p); err != nil {
		return err
	}
	log.Info().Str("store_id", storeID).Int64("expiry", p.ExpiryDate).Msg("billing: subscription renewed")
	return nil
}

// Expire marks the subscription expired, closing the public storefront.
func (g *Gate) Expire(ctx context.Context, storeID string) error {
	s, err := g.registry.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	p := s.Profile
	p.SubscriptionStatus = store.SubscriptionExpired
	if err := g.registry.UpdateProfile(ctx, storeID, p); err != nil {
		return err
	}
	log.Info().Str("store_id", storeID).Msg("billing: subscription expired")
	return nil
}
