// Package finnhub fetches quotes, daily candles and the economic calendar
// from the Finnhub REST API.
package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://finnhub.io/api/v1"

	// DefaultRequestsPerMinute stays under the free tier's 60.
	DefaultRequestsPerMinute = 50
)

var (
	ErrNoAPIKey      = errors.New("finnhub: API key required")
	ErrInvalidAPIKey = errors.New("finnhub: invalid API key")
	ErrBadPayload    = errors.New("finnhub: unexpected response")
)

// APIError is a non-200 response or an {"error": ...} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "finnhub: " + e.Message
	}
	return fmt.Sprintf("finnhub: API error (status %d): %s", e.Status, e.Message)
}

type Options struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	QuoteTTL          time.Duration
	CalendarTTL       time.Duration
	Timeout           time.Duration
	HTTPClient        *http.Client
	Logger            *zap.Logger
	Now               func() time.Time
}

// Client is safe for concurrent use.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	cache       *cache.Cache
	quoteTTL    time.Duration
	calendarTTL time.Duration
	log         *zap.Logger
	now         func() time.Time
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if opts.QuoteTTL <= 0 {
		opts.QuoteTTL = 5 * time.Minute
	}
	if opts.CalendarTTL <= 0 {
		opts.CalendarTTL = time.Hour
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	// A full minute's budget may be spent at once, then it refills evenly.
	perMinute := opts.RequestsPerMinute
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      strings.TrimSpace(opts.APIKey),
		httpClient:  opts.HTTPClient,
		limiter:     limiter,
		cache:       cache.New(opts.QuoteTTL, 2*opts.CalendarTTL),
		quoteTTL:    opts.QuoteTTL,
		calendarTTL: opts.CalendarTTL,
		log:         opts.Logger.Named("finnhub"),
		now:         opts.Now,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

// get fetches path and returns the raw body. Responses are cached for ttl
// keyed by path and params; the token is never part of the key.
func (c *Client) get(ctx context.Context, path string, params url.Values, ttl time.Duration) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNoAPIKey
	}

	key := path + "?" + params.Encode()
	if ttl > 0 {
		if body, found := c.cache.Get(key); found {
			return body.([]byte), nil
		}
	}

	body, err := c.fetch(ctx, path, params, c.apiKey)
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		c.cache.Set(key, body, ttl)
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values, token string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("token", token)
	apiURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidAPIKey
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var probe struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &probe) == nil && probe.Error != "" {
		return nil, &APIError{Message: probe.Error}
	}
	return body, nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
