package resolver

import (
	"context"
	"fmt"
	"net"

	"github.com/evyataryagoni/iplocator/internal/models"
	"github.com/oschwald/geoip2-golang"
)

const NameGeoIP2 = "geoip2"

// GeoIP2Resolver resolves IPs offline from a MaxMind City database
// Unlike the HTTP resolver it needs the text to parse as an address
type GeoIP2Resolver struct {
	reader *geoip2.Reader
}

// NewGeoIP2Resolver opens the .mmdb file at path
func NewGeoIP2Resolver(path string) (*GeoIP2Resolver, error) {
	if path == "" {
		return nil, fmt.Errorf("GeoIP2 database path is empty")
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}

	return &GeoIP2Resolver{reader: reader}, nil
}

func (r *GeoIP2Resolver) Name() string {
	return NameGeoIP2
}

// Resolve formats English city and first subdivision names plus the ISO country code
func (r *GeoIP2Resolver) Resolve(_ context.Context, ip string) models.Resolution {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return models.Fallen(fmt.Errorf("%w: %q", ErrInvalidIP, ip))
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		return models.Fallen(fmt.Errorf("cannot lookup %s: %w", ip, err))
	}

	region := ""
	if len(record.Subdivisions) > 0 {
		region = record.Subdivisions[0].Names["en"]
	}

	return models.Resolution{
		Location: FormatLocation(record.City.Names["en"], region, record.Country.IsoCode),
	}
}

// Close closes the database file
func (r *GeoIP2Resolver) Close() error {
	if r.reader != nil {
		return r.reader.Close()
	}
	return nil
}
