// Package catalog owns owner-scoped product mutation, bounded by the
// store's plan ceiling. Ownership itself is checked at the HTTP boundary;
// the ceiling is re-checked here because proactive UI state can be stale.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/store"
)

// ErrPlanLimitReached is re-exported so callers need not import store for
// the capacity case.
var ErrPlanLimitReached = store.ErrPlanLimitReached

// Service mutates store catalogs through the registry.
type Service struct {
	registry *store.Registry
	limits   PlanLimits
}

// NewService creates a catalog Service with the given plan-limit table.
func NewService(registry *store.Registry, limits PlanLimits) *Service {
	if limits == nil {
		limits = DefaultPlanLimits()
	}
	return &Service{registry: registry, limits: limits}
}

// AddProduct validates p, assigns an id when the caller did not, and
// prepends it to the catalog. Fails with ErrPlanLimitReached when the
// catalog is at the store's plan ceiling, leaving the product list
// unchanged.
func (s *Service) AddProduct(ctx context.Context, storeID string, p store.Product) (*store.Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, errors.New("product name is required")
	}
	if p.Price < 0 {
		return nil, fmt.Errorf("product price must be non-negative, got %d", p.Price)
	}

	if p.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("catalog: failed to generate product id: %w", err)
		}
		p.ID = id.String()
	}

	current, err := s.registry.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	limit := s.limits.LimitFor(current.Profile.PlanName)

	if err := s.registry.AddProduct(ctx, storeID, p, limit); err != nil {
		if errors.Is(err, store.ErrPlanLimitReached) {
			log.Warn().Str("store_id", storeID).Str("plan", current.Profile.PlanName).Int("limit", limit).Msg("catalog: plan ceiling reached")
			return nil, err
		}
		return nil, err
	}

	log.Info().Str("store_id", storeID).Str("product_id", p.ID).Msg("catalog: product added")
	return &p, nil
}

// DeleteProduct removes a product by id. Deleting a non-existent id is a
// no-op, not an error.
func (s *Service) DeleteProduct(ctx context.Context, storeID, productID string) error {
	return s.registry.RemoveProduct(ctx, storeID, productID)
}

// Limit returns the catalog ceiling for the given plan name, for proactive
// UI affordances.
func (s *Service) Limit(planName string) int {
	return s.limits.LimitFor(planName)
}
