package store

import (
	"context"
	"sync"
)

// memoryRepository keeps the aggregates in a map under a mutex. It backs
// tests and the database-less dev mode; the mutex gives the same
// field-scoped atomicity the Postgres repository gets from transactions.
type memoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]MerchantStore
	order  []string // creation order, for stable listings
	bySlug map[string]string
}

// NewMemoryRepository returns an empty in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID:   make(map[string]MerchantStore),
		bySlug: make(map[string]string),
	}
}

func (r *memoryRepository) Create(_ context.Context, s *MerchantStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySlug[s.Profile.StoreSlug]; ok {
		return ErrDuplicateSlug
	}
	for _, existing := range r.byID {
		if existing.Profile.UserID == s.Profile.UserID {
			return ErrOwnerHasStore
		}
	}

	r.byID[s.Profile.ID] = s.Clone()
	r.bySlug[s.Profile.StoreSlug] = s.Profile.ID
	r.order = append(r.order, s.Profile.ID)
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*MerchantStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := s.Clone()
	return &out, nil
}

func (r *memoryRepository) GetBySlug(ctx context.Context, slug string) (*MerchantStore, error) {
	r.mu.RLock()
	id, ok := r.bySlug[slug]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memoryRepository) List(_ context.Context) ([]MerchantStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MerchantStore, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}

func (r *memoryRepository) UpdateProfile(_ context.Context, id string, p StoreProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.Profile = p
	r.byID[id] = s
	return nil
}

func (r *memoryRepository) UpdateProducts(_ context.Context, id string, products []Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.Products = append([]Product(nil), products...)
	r.byID[id] = s
	return nil
}

func (r *memoryRepository) UpdateOrders(_ context.Context, id string, orders []Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.Orders = append([]Order(nil), orders...)
	r.byID[id] = s
	return nil
}

func (r *memoryRepository) Replace(_ context.Context, s MerchantStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[s.Profile.ID]; !ok {
		return ErrNotFound
	}
	r.byID[s.Profile.ID] = s.Clone()
	return nil
}

func (r *memoryRepository) AppendOrder(_ context.Context, storeID string, ord Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[storeID]
	if !ok {
		return ErrNotFound
	}
	s.Orders = append([]Order{ord}, s.Orders...)
	r.byID[storeID] = s
	return nil
}

func (r *memoryRepository) SetOrderStatus(_ context.Context, storeID, orderID string, status OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[storeID]
	if !ok {
		return false, ErrNotFound
	}
	for i := range s.Orders {
		if s.Orders[i].ID == orderID {
			s.Orders[i].Status = status
			r.byID[storeID] = s
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) AddProduct(_ context.Context, storeID string, p Product, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[storeID]
	if !ok {
		return ErrNotFound
	}
	if len(s.Products) >= limit {
		return ErrPlanLimitReached
	}
	s.Products = append([]Product{p}, s.Products...)
	r.byID[storeID] = s
	return nil
}

func (r *memoryRepository) RemoveProduct(_ context.Context, storeID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[storeID]
	if !ok {
		return ErrNotFound
	}
	kept := s.Products[:0:0]
	for _, p := range s.Products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	s.Products = kept
	r.byID[storeID] = s
	return nil
}
