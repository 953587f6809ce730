// Package session holds client-local state: the anonymous visitor
// identifier that keys guest carts, and the "currently active store"
// pointer. Both live behind an injectable Storage so the lifecycle is
// explicit and tests can swap the device store out.
package session

import (
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
)

const (
	sessionKey     = "swiftcart_session_id"
	activeStoreKey = "swiftcart_active_store_id"

	// sessionPrefix is cosmetic; the UUID underneath is the uniqueness
	// mechanism.
	sessionPrefix = "session_"
)

// Storage models durable device-local key/value storage.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Manager is the client session context: created on app start, torn down on
// store exit. It is not tied to an authenticated identity, so the visitor
// id survives login and logout.
type Manager struct {
	storage Storage
}

// NewManager creates a Manager over the given device storage.
func NewManager(storage Storage) *Manager {
	return &Manager{storage: storage}
}

// SessionID returns the durable anonymous visitor id, generating and
// persisting one on first use.
func (m *Manager) SessionID() (string, error) {
	if id, ok := m.storage.Get(sessionKey); ok && id != "" {
		return id, nil
	}
	raw, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("session: failed to generate session id: %w", err)
	}
	id := sessionPrefix + raw.String()
	m.storage.Set(sessionKey, id)
	return id, nil
}

// ActiveStoreID returns the store the session is currently inside, if any.
func (m *Manager) ActiveStoreID() (string, bool) {
	id, ok := m.storage.Get(activeStoreKey)
	return id, ok && id != ""
}

// EnterStore records storeID as the active tenant.
func (m *Manager) EnterStore(storeID string) {
	m.storage.Set(activeStoreKey, storeID)
}

// ExitStore clears the active tenant pointer. Clearing the store's cart is
// the caller's responsibility.
func (m *Manager) ExitStore() {
	m.storage.Delete(activeStoreKey)
}

// memoryStorage is the default Storage: a map under a mutex.
type memoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage returns an empty in-process Storage.
func NewMemoryStorage() Storage {
	return &memoryStorage{values: make(map[string]string)}
}

func (s *memoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *memoryStorage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *memoryStorage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
