package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentyard/equipsearch/cache"
	"github.com/rentyard/equipsearch/core"
	"github.com/rentyard/equipsearch/geo"
	"github.com/rentyard/equipsearch/query"
	"github.com/rentyard/equipsearch/ratelimit"
)

// upstreamResponse is the service's search response envelope.
type upstreamResponse struct {
	Value []core.EquipmentRecord `json:"value"`
	Count int64                  `json:"@odata.count"`
}

// Client executes searches against the upstream equipment search service.
//
// The cache store and rate-limit bucket are shared process-wide state:
// construct them once and pass the same instances to every client.
type Client struct {
	config     *Config
	store      *cache.Store
	bucket     *ratelimit.Bucket
	httpClient *http.Client
	market     geo.Market
	logger     *slog.Logger

	sleep  func(context.Context, time.Duration) error
	jitter func() time.Duration
}

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithHTTPClient replaces the HTTP client.
// Default has a 15 second timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			httpClient = defaultHTTPClient()
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithMarket overrides the home market used for purchase-only
// normalization. Default is geo.DefaultMarket.
func WithMarket(market geo.Market) Option {
	return func(c *Client) error {
		c.market = market
		return nil
	}
}

// WithBackoffSleep replaces the retry backoff sleep. Used by tests.
func WithBackoffSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) error {
		if sleep == nil {
			sleep = sleepWithContext
		}
		c.sleep = sleep
		return nil
	}
}

// WithJitter replaces the backoff jitter source. Used by tests.
func WithJitter(jitter func() time.Duration) Option {
	return func(c *Client) error {
		if jitter == nil {
			jitter = randomJitter
		}
		c.jitter = jitter
		return nil
	}
}

// New creates a search client. The store may be nil only when caching is
// disabled in the config; the bucket is always required.
func New(config *Config, store *cache.Store, bucket *ratelimit.Bucket, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.CacheEnabled && store == nil {
		return nil, ErrCacheRequired
	}
	if bucket == nil {
		return nil, ErrBucketRequired
	}

	c := &Client{
		config:     config,
		store:      store,
		bucket:     bucket,
		httpClient: defaultHTTPClient(),
		market:     geo.DefaultMarket,
		logger:     slog.Default().With("component", "search-client"),
		sleep:      sleepWithContext,
		jitter:     randomJitter,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Search runs one search. The returned result is always non-nil; on any
// failure it is empty and the error carries the explanation, so callers
// render "no results" rather than failing the page.
func (c *Client) Search(ctx context.Context, criteria core.SearchCriteria) (*core.SearchResult, error) {
	empty := &core.SearchResult{Records: []core.EquipmentRecord{}}

	if c.config.APIKey == "" {
		return empty, ErrMissingAPIKey
	}

	key := criteria.KeyID()
	if c.config.CacheEnabled {
		if cached, ok := c.store.Get(key, c.config.CacheTTL); ok {
			c.logger.Debug("cache hit", "key", uint64(key), "records", len(cached.Records))
			return cached, nil
		}
	}

	body, err := json.Marshal(query.BuildRequest(criteria))
	if err != nil {
		return empty, err
	}

	requestID := uuid.NewString()
	start := time.Now()

	var result *core.SearchResult
	err = retryTransient(ctx, func() error {
		if err := c.bucket.Acquire(ctx); err != nil {
			return err
		}
		res, err := c.do(ctx, body, requestID)
		if err != nil {
			return err
		}
		result = res
		return nil
	}, c.config.MaxRetries, c.config.RetryBaseDelay, c.sleep, c.jitter)

	if err != nil {
		c.logger.Warn("search failed",
			"requestID", requestID, "duration", time.Since(start), "err", err)
		return empty, err
	}

	normalizeRecords(result.Records, c.market)

	if c.config.CacheEnabled {
		if err := c.store.Set(key, result); err != nil {
			// A failed cache write costs a future upstream call, nothing more.
			c.logger.Warn("cache write failed", "key", uint64(key), "err", err)
		}
	}

	c.logger.Info("search completed",
		"requestID", requestID,
		"duration", time.Since(start),
		"records", len(result.Records),
		"total", result.Total)

	return result, nil
}

// do executes a single upstream HTTP call.
func (c *Client) do(ctx context.Context, body []byte, requestID string) (*core.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.config.APIKey)
	req.Header.Set("x-request-id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// Read a small body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	var payload upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	records := payload.Value
	if records == nil {
		records = []core.EquipmentRecord{}
	}
	return &core.SearchResult{Records: records, Total: payload.Count}, nil
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
