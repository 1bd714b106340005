// Package kvstore persists cart and order state as keyed JSON blobs in
// Redis: `cart:{user}` holds the serialized CartState, `orders:{user}`
// holds the serialized order list with RFC3339 timestamps. A missing key
// reads as empty state; a blob that fails to parse is treated the same
// way and logged, so a corrupt value never propagates a raw decode error.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"grocer-service/internal/models"
	"grocer-service/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	cartKeyPrefix   = "cart:"
	ordersKeyPrefix = "orders:"
	productCacheKey = "products:all"
)

type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and verifies the connection.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, logger: util.GetLogger()}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func cartKey(userID string) string {
	return cartKeyPrefix + userID
}

func ordersKey(userID string) string {
	return ordersKeyPrefix + userID
}

// LoadCart reads the persisted cart for a user. A missing or unparsable
// blob yields the empty state.
func (c *Client) LoadCart(ctx context.Context, userID string) (models.CartState, error) {
	raw, err := c.rdb.Get(ctx, cartKey(userID)).Bytes()
	if err == redis.Nil {
		return emptyCart(), nil
	}
	if err != nil {
		return emptyCart(), fmt.Errorf("load cart: %w", err)
	}

	state, ok := decodeCart(raw)
	if !ok {
		c.logger.Warn("Discarding unparsable cart blob", zap.String("user_id", userID))
	}
	return state, nil
}

// SaveCart serializes the full cart state under the user's cart key.
func (c *Client) SaveCart(ctx context.Context, userID string, state models.CartState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.rdb.Set(ctx, cartKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// DeleteCart removes the persisted cart for a user.
func (c *Client) DeleteCart(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// LoadOrders reads the persisted order list for a user. A missing or
// unparsable blob yields an empty list.
func (c *Client) LoadOrders(ctx context.Context, userID string) ([]models.Order, error) {
	raw, err := c.rdb.Get(ctx, ordersKey(userID)).Bytes()
	if err == redis.Nil {
		return []models.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	orders, ok := decodeOrders(raw)
	if !ok {
		c.logger.Warn("Discarding unparsable orders blob", zap.String("user_id", userID))
	}
	return orders, nil
}

// SaveOrders rewrites the full order list for a user.
func (c *Client) SaveOrders(ctx context.Context, userID string, orders []models.Order) error {
	raw, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	if err := c.rdb.Set(ctx, ordersKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

// ScanOrderUsers returns the ids of all users with a persisted order
// list. Used by the status progression job.
func (c *Client) ScanOrderUsers(ctx context.Context) ([]string, error) {
	var users []string
	iter := c.rdb.Scan(ctx, 0, ordersKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		users = append(users, strings.TrimPrefix(iter.Val(), ordersKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan order keys: %w", err)
	}
	return users, nil
}

// CacheProductList stores the product listing with a TTL.
func (c *Client) CacheProductList(ctx context.Context, products []models.Product, ttl time.Duration) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode product cache: %w", err)
	}
	return c.rdb.Set(ctx, productCacheKey, raw, ttl).Err()
}

// CachedProductList returns the cached product listing, or ok=false on a
// cache miss.
func (c *Client) CachedProductList(ctx context.Context) ([]models.Product, bool, error) {
	raw, err := c.rdb.Get(ctx, productCacheKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, nil
	}
	return products, true, nil
}

func emptyCart() models.CartState {
	return models.CartState{Items: []models.CartItem{}}
}

// decodeCart parses a persisted cart blob. ok is false when the blob is
// malformed, in which case the empty state is returned.
func decodeCart(raw []byte) (models.CartState, bool) {
	var state models.CartState
	if err := json.Unmarshal(raw, &state); err != nil {
		return emptyCart(), false
	}
	if state.Items == nil {
		state.Items = []models.CartItem{}
	}
	return state, true
}

// decodeOrders parses a persisted order list blob. ok is false when the
// blob is malformed, in which case an empty list is returned.
func decodeOrders(raw []byte) ([]models.Order, bool) {
	var orders []models.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return []models.Order{}, false
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, true
}
