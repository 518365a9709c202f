package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"order-feedback/apps/cart/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisStore keeps each cart in a hash cart:<userID>; field is the product id
// and the value a JSON line.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

type redisLine struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (s *RedisStore) Get(ctx context.Context, userID uint) (*model.Cart, error) {
	val, err := s.rdb.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	cart := &model.Cart{UserID: userID, Items: make([]model.CartItem, 0, len(val))}
	for k, v := range val {
		if k == updatedAtField {
			if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
				cart.UpdatedAt = ts
			}
			continue
		}
		productID, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		var line redisLine
		if err := json.Unmarshal([]byte(v), &line); err != nil {
			return nil, fmt.Errorf("decode cart line %s: %w", k, err)
		}
		cart.Items = append(cart.Items, model.CartItem{
			ProductID: uint(productID),
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	sort.Slice(cart.Items, func(i, j int) bool { return cart.Items[i].ProductID < cart.Items[j].ProductID })
	return cart, nil
}

const updatedAtField = "updated_at"

func (s *RedisStore) SetItem(ctx context.Context, userID uint, item model.CartItem) error {
	body, err := json.Marshal(redisLine{Quantity: item.Quantity, Price: item.Price})
	if err != nil {
		return err
	}
	field := strconv.FormatUint(uint64(item.ProductID), 10)
	return s.rdb.HSet(ctx, cartKey(userID),
		field, body,
		updatedAtField, time.Now().UTC().Format(time.RFC3339Nano),
	).Err()
}

func (s *RedisStore) RemoveItem(ctx context.Context, userID, productID uint) error {
	return s.rdb.HDel(ctx, cartKey(userID), strconv.FormatUint(uint64(productID), 10)).Err()
}

func (s *RedisStore) Clear(ctx context.Context, userID uint) error {
	if err := s.rdb.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}
