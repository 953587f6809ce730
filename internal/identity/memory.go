package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	identity     Identity
	passwordHash []byte
}

// memoryProvider keeps accounts and live tokens in maps under a mutex.
type memoryProvider struct {
	mu        sync.RWMutex
	byEmail   map[string]*account
	tokens    map[string]string // token -> account email
	nextSub   int
	listeners map[int]ChangeListener
}

// NewMemoryProvider returns an empty in-process Provider.
func NewMemoryProvider() Provider {
	return &memoryProvider{
		byEmail:   make(map[string]*account),
		tokens:    make(map[string]string),
		listeners: make(map[int]ChangeListener),
	}
}

func (p *memoryProvider) Register(_ context.Context, email, password, displayName string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("identity: email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("identity: failed to hash password")
		return nil, fmt.Errorf("identity: failed to hash password: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("identity: failed to generate user id: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byEmail[email]; ok {
		return nil, ErrEmailExists
	}
	acc := &account{
		identity:     Identity{ID: id.String(), Email: email, DisplayName: displayName},
		passwordHash: hash,
	}
	p.byEmail[email] = acc

	out := acc.identity
	return &out, nil
}

func (p *memoryProvider) Login(_ context.Context, email, password string) (*Identity, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.byEmail[email]
	if !ok {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	raw, err := uuid.NewV4()
	if err != nil {
		return nil, "", fmt.Errorf("identity: failed to generate token: %w", err)
	}
	token := raw.String()
	p.tokens[token] = email

	out := acc.identity
	p.notifyLocked(&out)
	return &out, token, nil
}

func (p *memoryProvider) Logout(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.tokens[token]; !ok {
		return ErrUnauthenticated
	}
	delete(p.tokens, token)
	p.notifyLocked(nil)
	return nil
}

func (p *memoryProvider) Verify(_ context.Context, token string) (*Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	email, ok := p.tokens[token]
	if !ok {
		return nil, ErrUnauthenticated
	}
	acc, ok := p.byEmail[email]
	if !ok {
		return nil, ErrUnauthenticated
	}
	out := acc.identity
	return &out, nil
}

func (p *memoryProvider) OnChange(l ChangeListener) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.listeners[id] = l
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *memoryProvider) notifyLocked(id *Identity) {
	for _, l := range p.listeners {
		l(id)
	}
}
