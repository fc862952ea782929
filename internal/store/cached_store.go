package store

import (
	"context"
	"fmt"

	"github.com/evyataryagoni/iplocator/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore keeps recently used records in process memory in front of another Store
// Records are immutable once written, so cached entries never go stale
type CachedStore struct {
	Store

	cache *lru.Cache[string, models.LocationRecord]
}

// NewCachedStore wraps inner with an LRU of the given size
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, models.LocationRecord](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &CachedStore{
		Store: inner,
		cache: cache,
	}, nil
}

// FindByIP serves from the LRU when possible and fills it on a backing hit
func (s *CachedStore) FindByIP(ctx context.Context, ip string) (*models.LocationRecord, error) {
	if record, ok := s.cache.Get(ip); ok {
		return &record, nil
	}

	record, err := s.Store.FindByIP(ctx, ip)
	if err != nil {
		return nil, err
	}
	s.cache.Add(ip, *record)
	return record, nil
}

// Insert writes through and caches the record once the backing store accepted it
func (s *CachedStore) Insert(ctx context.Context, record *models.LocationRecord) error {
	if err := s.Store.Insert(ctx, record); err != nil {
		return err
	}
	s.cache.Add(record.IP, *record)
	return nil
}

// Len returns the number of cached entries
func (s *CachedStore) Len() int {
	return s.cache.Len()
}
