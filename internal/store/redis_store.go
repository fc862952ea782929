package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/evyataryagoni/iplocator/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis
//
// Key format: ip:<ip text>
// Example:    ip:8.8.8.8 -> "Mountain View, California, US"
// Keys are written with SETNX and no expiration, so a record is written once
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func redisKey(ip string) string {
	return "ip:" + ip
}

// FindByIP reads the location stored under ip:<ip>
func (s *RedisStore) FindByIP(ctx context.Context, ip string) (*models.LocationRecord, error) {
	val, err := s.client.Get(ctx, redisKey(ip)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}

	return &models.LocationRecord{
		IP:       ip,
		Location: val,
	}, nil
}

// Insert stores the location only if the key does not exist yet
func (s *RedisStore) Insert(ctx context.Context, record *models.LocationRecord) error {
	ok, err := s.client.SetNX(ctx, redisKey(record.IP), record.Location, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	if !ok {
		return fmt.Errorf("insert %q: %w", record.IP, ErrDuplicate)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
