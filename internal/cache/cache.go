// Package cache содержит Redis-хранилище одноразовых кодов (OTP)
// для сценария восстановления пароля.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound — код не найден или его TTL истёк.
var ErrNotFound = errors.New("otp not found")

// OTPCache — минимальный контракт хранилища одноразовых кодов.
// Код живёт ровно TTL и удаляется после успешной проверки.
type OTPCache interface {
	// Set сохраняет код для пользователя с TTL, затирая предыдущий.
	Set(ctx context.Context, userID int64, code string, ttl time.Duration) error
	// Get возвращает текущий код пользователя.
	// Ошибки: ErrNotFound, если код отсутствует или истёк.
	Get(ctx context.Context, userID int64) (string, error)
	// Del удаляет код пользователя (после успешной проверки).
	Del(ctx context.Context, userID int64) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "ums:otp:".
func NewRedisCache(redisURL, prefix string) (OTPCache, error) {
	if prefix == "" {
		prefix = "ums:otp:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(userID int64) string {
	return c.prefix + strconv.FormatInt(userID, 10)
}

func (c *redisCache) Set(ctx context.Context, userID int64, code string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(userID), code, ttl).Err()
}

func (c *redisCache) Get(ctx context.Context, userID int64) (string, error) {
	code, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}

		return "", err
	}

	return code, nil
}

func (c *redisCache) Del(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
