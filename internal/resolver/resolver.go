package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/iplocator/internal/models"
)

var (
	// ErrUnexpectedStatus is wrapped when the upstream answers with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrInvalidPayload is wrapped when the upstream body is not a JSON object
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidIP is returned by resolvers that need a parseable address
	ErrInvalidIP = errors.New("invalid IP address")
)

// Resolver turns an IP string into a human readable location
//
// Resolve never fails outright: on any error it returns a fallback
// Resolution carrying "Unknown" and the cause, so callers can decide
// whether a failed answer is worth persisting.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, ip string) models.Resolution
	Close() error
}

// Config holds configuration for creating a resolver
type Config struct {
	Type string // "ipinfo" or "geoip2"

	// ipinfo
	BaseURL string
	Token   string
	Timeout time.Duration

	// geoip2
	DatabasePath string
}

// New creates a resolver based on the configuration (factory pattern)
func New(cfg Config) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case NameIPInfo, "":
		return NewIPInfoResolver(IPInfoConfig{
			BaseURL: cfg.BaseURL,
			Token:   cfg.Token,
			Timeout: cfg.Timeout,
		}), nil

	case NameGeoIP2:
		r, err := NewGeoIP2Resolver(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create GeoIP2 resolver: %w", err)
		}
		return r, nil

	default:
		return nil, fmt.Errorf("unknown resolver type: %s (supported: 'ipinfo', 'geoip2')", cfg.Type)
	}
}

// FormatLocation joins city, region and country with ", "
// Missing parts stay as empty strings, e.g. ", , US"
func FormatLocation(city, region, country string) string {
	return city + ", " + region + ", " + country
}
