package session_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcart/storefront-platform/internal/session"
)

func TestManager_SessionIDIsDurable(t *testing.T) {
	storage := session.NewMemoryStorage()
	m := session.NewManager(storage)

	first, err := m.SessionID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "session_"))

	second, err := m.SessionID()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// a fresh manager over the same device storage resumes the same id
	again, err := session.NewManager(storage).SessionID()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestManager_SessionIDsAreUniquePerDevice(t *testing.T) {
	a, err := session.NewManager(session.NewMemoryStorage()).SessionID()
	require.NoError(t, err)
	b, err := session.NewManager(session.NewMemoryStorage()).SessionID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestManager_ActiveStorePointer(t *testing.T) {
	m := session.NewManager(session.NewMemoryStorage())

	_, ok := m.ActiveStoreID()
	assert.False(t, ok)

	m.EnterStore("store-1")
	id, ok := m.ActiveStoreID()
	assert.True(t, ok)
	assert.Equal(t, "store-1", id)

	m.EnterStore("store-2")
	id, _ = m.ActiveStoreID()
	assert.Equal(t, "store-2", id)

	m.ExitStore()
	_, ok = m.ActiveStoreID()
	assert.False(t, ok)
}
