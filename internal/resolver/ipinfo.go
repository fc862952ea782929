package resolver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evyataryagoni/iplocator/internal/models"
)

const (
	NameIPInfo = "ipinfo"

	DefaultIPInfoURL = "https://ipinfo.io"
	DefaultTimeout   = 5 * time.Second
)

// ipinfoResponse holds the fields we use from GET /<ip>/json
type ipinfoResponse struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// IPInfoConfig configures the ipinfo.io client
type IPInfoConfig struct {
	BaseURL string        // Default https://ipinfo.io
	Token   string        // Optional bearer token
	Timeout time.Duration // Client timeout, default 5s
	Client  *http.Client  // Optional; overrides Timeout
}

// IPInfoResolver resolves IPs through the ipinfo.io JSON API
// One GET per call, no retries
type IPInfoResolver struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewIPInfoResolver creates an ipinfo.io resolver
func NewIPInfoResolver(cfg IPInfoConfig) *IPInfoResolver {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultIPInfoURL
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &IPInfoResolver{
		baseURL: baseURL,
		token:   cfg.Token,
		client:  client,
	}
}

func (r *IPInfoResolver) Name() string {
	return NameIPInfo
}

// URL returns the lookup endpoint for ip: <base>/<ip>/json
// The IP text is path-escaped but otherwise passed through untouched
func (r *IPInfoResolver) URL(ip string) string {
	return r.baseURL + "/" + url.PathEscape(ip) + "/json"
}

// Resolve looks up ip and formats "city, region, country"
func (r *IPInfoResolver) Resolve(ctx context.Context, ip string) models.Resolution {
	location, err := r.lookup(ctx, ip)
	if err != nil {
		return models.Fallen(err)
	}
	return models.Resolution{Location: location}
}

func (r *IPInfoResolver) lookup(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL(ip), nil)
	if err != nil {
		return "", fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot send a request: %w", err)
	}

	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	// A pointer so that a literal "null" body is caught
	var payload *ipinfoResponse
	if err := json.NewDecoder(bufio.NewReader(resp.Body)).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload == nil {
		return "", fmt.Errorf("%w: null body", ErrInvalidPayload)
	}

	return FormatLocation(payload.City, payload.Region, payload.Country), nil
}

// Close releases idle connections held by the HTTP client
func (r *IPInfoResolver) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
