package store

import (
	"fmt"
	"strings"
)

// Config selects and configures a Store backend
type Config struct {
	Type string // "sql", "redis" or "memory"

	SQL SQLConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// LRUSize > 0 wraps the backend in a CachedStore of that many entries
	LRUSize int
}

// New creates a store based on the configuration (factory pattern)
func New(cfg Config) (Store, error) {
	var backend Store

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "sql", "":
		s, err := NewSQLStore(cfg.SQL)
		if err != nil {
			return nil, err
		}
		backend = s

	case "redis":
		s, err := NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		backend = s

	case "memory":
		backend = NewMemoryStore()

	default:
		return nil, fmt.Errorf("unknown datastore type: %s (supported: 'sql', 'redis', 'memory')", cfg.Type)
	}

	if cfg.LRUSize <= 0 {
		return backend, nil
	}

	cached, err := NewCachedStore(backend, cfg.LRUSize)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return cached, nil
}
