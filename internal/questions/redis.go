package questions

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	defaultRedisPrefix = "questions:"
	redisTombstone     = "__deleted__"
)

// RedisStore хранит каждый тип вопросов в отдельном списке Redis
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: defaultRedisPrefix}
}

func (s *RedisStore) key(kind Kind) string {
	return s.prefix + string(kind)
}

func (s *RedisStore) List(ctx context.Context, kind Kind) ([]string, error) {
	items, err := s.rdb.LRange(ctx, s.key(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s: %w", kind, err)
	}
	return items, nil
}

func (s *RedisStore) Append(ctx context.Context, kind Kind, text string) error {
	if err := s.rdb.RPush(ctx, s.key(kind), text).Err(); err != nil {
		return fmt.Errorf("redis append %s: %w", kind, err)
	}
	return nil
}

// Remove удаляет элемент по индексу: LSET на метку и LREM метки в одной транзакции
func (s *RedisStore) Remove(ctx context.Context, kind Kind, index int) error {
	key := s.key(kind)

	n, err := s.rdb.LLen(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis len %s: %w", kind, err)
	}
	if index < 0 || int64(index) >= n {
		return ErrInvalidIndex
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LSet(ctx, key, int64(index), redisTombstone)
		pipe.LRem(ctx, key, 1, redisTombstone)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis remove %s[%d]: %w", kind, index, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
