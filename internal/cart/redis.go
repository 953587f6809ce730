package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swiftcart/storefront-platform/internal/store"
)

const defaultTTL = 30 * 24 * time.Hour

// redisRepository stores each cart as one JSON document under
// "cart:<storeID>_<sessionID>". Abandoned carts expire with the key TTL.
type redisRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRepository returns a Repository over the given client.
func NewRedisRepository(client *redis.Client) Repository {
	return &redisRepository{client: client, prefix: "cart:", ttl: defaultTTL}
}

func (r *redisRepository) key(k Key) string {
	return r.prefix + k.String()
}

func (r *redisRepository) Get(ctx context.Context, k Key) ([]store.CartItem, error) {
	data, err := r.client.Get(ctx, r.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []store.CartItem{}, nil
		}
		return nil, fmt.Errorf("cart: failed to get cart %s: %w", k, err)
	}

	var items []store.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("cart: failed to unmarshal cart %s: %w", k, err)
	}
	return items, nil
}

func (r *redisRepository) Save(ctx context.Context, k Key, items []store.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: failed to marshal cart %s: %w", k, err)
	}
	if err := r.client.Set(ctx, r.key(k), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("cart: failed to save cart %s: %w", k, err)
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, k Key) error {
	if err := r.client.Del(ctx, r.key(k)).Err(); err != nil {
		return fmt.Errorf("cart: failed to delete cart %s: %w", k, err)
	}
	return nil
}
