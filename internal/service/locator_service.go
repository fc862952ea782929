package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/metrics"
	"github.com/evyataryagoni/iplocator/internal/models"
	"github.com/evyataryagoni/iplocator/internal/resolver"
	"github.com/evyataryagoni/iplocator/internal/store"
	"golang.org/x/sync/singleflight"
)

// Options tune the cache-or-resolve behavior
type Options struct {
	// PersistFallback stores "Unknown" when the resolver fails, so that IP is
	// never retried. Disable to show "Unknown" without caching it.
	PersistFallback bool
}

// LocatorService handles the cache lookup or fetch-and-store flow
//
// Responsibilities:
//   - Look the IP up in the store (exact text match, no validation)
//   - On a miss, ask the resolver and persist the answer
//   - Coalesce concurrent misses for the same IP
type LocatorService struct {
	store    store.Store
	resolver resolver.Resolver
	metrics  *metrics.Metrics // optional
	logger   *logger.Logger
	opts     Options
	group    singleflight.Group
}

// NewLocatorService creates a new locator service
//
// Parameters:
//   - s: any implementation of the Store interface
//   - r: any implementation of the Resolver interface
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
//   - opts: behavior switches
func NewLocatorService(s store.Store, r resolver.Resolver, m *metrics.Metrics, log *logger.Logger, opts Options) *LocatorService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &LocatorService{
		store:    s,
		resolver: r,
		metrics:  m,
		logger:   log.WithComponent("LocatorService"),
		opts:     opts,
	}
}

// Locate returns the location for ip, resolving and caching it on a miss
//
// Flow:
//  1. Look up the stored record
//  2. Hit: return it, no side effects
//  3. Miss: resolve (once per IP across concurrent callers) and insert
//
// Only store failures are returned as errors; resolver failures come back
// as a Lookup with Source == models.SourceFallback.
func (s *LocatorService) Locate(ctx context.Context, ip string) (*models.Lookup, error) {
	log := s.logger.WithIP(ip)

	record, err := s.find(ctx, ip)
	if err == nil {
		s.countHit(true)
		s.countLookup(models.SourceHit)
		log.Debug().Msg("Cache hit")
		return &models.Lookup{
			IP:       ip,
			Location: record.Location,
			Source:   models.SourceHit,
		}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Msg("Store error during lookup")
		s.countError("store_find")
		return nil, err
	}
	s.countHit(false)

	// The shared flight must outlive any single caller's request
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(ip, func() (any, error) {
		return s.resolveAndStore(flightCtx, ip)
	})
	if err != nil {
		return nil, err
	}

	lookup := *v.(*models.Lookup)
	s.countLookup(lookup.Source)
	return &lookup, nil
}

// resolveAndStore handles a miss: one resolver call and at most one insert
func (s *LocatorService) resolveAndStore(ctx context.Context, ip string) (*models.Lookup, error) {
	log := s.logger.WithIP(ip)
	res := s.resolve(ctx, ip)

	lookup := &models.Lookup{
		IP:       ip,
		Location: res.Location,
		Source:   models.SourceResolved,
	}

	if res.Fallback {
		lookup.Source = models.SourceFallback
		log.Warn().
			Err(res.Err).
			Bool("persist", s.opts.PersistFallback).
			Msg("Resolver failed, using fallback location")

		if !s.opts.PersistFallback {
			return lookup, nil
		}
	}

	err := s.insert(ctx, &models.LocationRecord{IP: ip, Location: res.Location})
	if errors.Is(err, store.ErrDuplicate) {
		// Another writer stored this IP first; its row is the answer
		existing, ferr := s.find(ctx, ip)
		if ferr != nil {
			s.countError("store_find")
			return nil, fmt.Errorf("re-read after duplicate insert: %w", ferr)
		}
		log.Info().Msg("Record written concurrently, using stored value")
		return &models.Lookup{
			IP:       ip,
			Location: existing.Location,
			Source:   models.SourceHit,
		}, nil
	}
	if err != nil {
		log.Error().Err(err).Msg("Store error during insert")
		s.countError("store_insert")
		return nil, err
	}

	lookup.Stored = true
	log.Info().
		Str("location", lookup.Location).
		Str("source", string(lookup.Source)).
		Msg("Location stored")
	return lookup, nil
}

func (s *LocatorService) resolve(ctx context.Context, ip string) models.Resolution {
	start := time.Now()
	res := s.resolver.Resolve(ctx, ip)

	if s.metrics != nil {
		s.metrics.ResolverCallDuration.Observe(time.Since(start).Seconds())
		result := "success"
		if res.Fallback {
			result = "fallback"
		}
		s.metrics.ResolverCallsTotal.WithLabelValues(s.resolver.Name(), result).Inc()
	}
	return res
}

func (s *LocatorService) find(ctx context.Context, ip string) (*models.LocationRecord, error) {
	start := time.Now()
	record, err := s.store.FindByIP(ctx, ip)
	s.observeStore("find", start, err, store.ErrNotFound)
	return record, err
}

func (s *LocatorService) insert(ctx context.Context, record *models.LocationRecord) error {
	start := time.Now()
	err := s.store.Insert(ctx, record)
	s.observeStore("insert", start, err, store.ErrDuplicate)
	return err
}

// observeStore records a store call; expected is the sentinel that is not a failure
func (s *LocatorService) observeStore(operation string, start time.Time, err, expected error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, expected):
		status = "miss"
	default:
		status = "error"
	}
	s.metrics.DatastoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	s.metrics.DatastoreQueriesTotal.WithLabelValues(operation, status).Inc()
}

func (s *LocatorService) countHit(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.DatastoreCacheHits.WithLabelValues("hit").Inc()
	} else {
		s.metrics.DatastoreCacheHits.WithLabelValues("miss").Inc()
	}
}

func (s *LocatorService) countLookup(source models.Source) {
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues(string(source)).Inc()
	}
}

func (s *LocatorService) countError(errorType string) {
	if s.metrics != nil {
		s.metrics.LookupErrors.WithLabelValues(errorType).Inc()
	}
}

// Close releases the resolver and the store
func (s *LocatorService) Close() error {
	return errors.Join(s.resolver.Close(), s.store.Close())
}
