// Package client provides the Cloud Controller HTTP client with rate
// limit gating, optional response caching, and error handling.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/logankimmel/tpcf-automation/pkg/cache"
	"github.com/logankimmel/tpcf-automation/pkg/ratelimit"
)

// Prometheus metrics for Cloud Controller client operations.
var (
	capiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capi_requests_total",
		Help: "Total Cloud Controller requests by endpoint and status",
	}, []string{"endpoint", "status"})

	capiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "capi_request_duration_seconds",
		Help:    "Cloud Controller request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	capiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capi_errors_total",
		Help: "Total Cloud Controller errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client is the Cloud Controller API client.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// APIURL is the Cloud Controller base URL, e.g.
	// "https://api.sys.example.com". Required.
	APIURL string

	// Tokens supplies Authorization header values. Required.
	Tokens TokenSource

	// Redis enables the response cache and shared rate limit state
	// when non-nil. The client works without it.
	Redis *redis.Client

	// CacheTTL is how long successful responses are cached.
	CacheTTL time.Duration

	// UserAgent identifies this tool to the platform.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(apiURL string, tokens TokenSource) Config {
	return Config{
		APIURL:    apiURL,
		Tokens:    tokens,
		CacheTTL:  cache.DefaultTTL,
		UserAgent: "tpcf-automation/0.1.0",
		Timeout:   30 * time.Second,
	}
}

// New creates a new Cloud Controller client.
func New(cfg Config) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("api url is required")
	}

	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "tpcf-automation/0.1.0"
	}
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")

	logger := log.With().Str("component", "capi-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: ratelimit.NewTracker(cfg.Redis, logger),
		cache:       cacheManager,
		config:      cfg,
		logger:      logger,
	}, nil
}

// Do performs an HTTP request with rate limit gating, caching, retry,
// and error classification.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		capiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Check rate limit budget
	allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Rate limit check failed")
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Msg("Request blocked by rate limiter")
		capiRequestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
		return nil, fmt.Errorf("request blocked: rate limit critical")
	}

	// Step 2: Check cache
	cacheKey := cache.Key{URL: req.URL.String()}
	if c.cache != nil && req.Method == http.MethodGet {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		if entry != nil {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Time("cached_at", entry.CachedAt).
				Msg("Serving response from cache")
			capiRequestsTotal.WithLabelValues(endpoint, "cache_hit").Inc()
			return cache.EntryToResponse(entry), nil
		}
	}

	// Step 3: Set headers
	token, err := c.config.Tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain token: %w", err)
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing Cloud Controller request")

	// Step 4: Execute with retry
	var resp *http.Response
	var errClass ErrorClass

	retryErr := retryWithBackoff(ctx, func() error {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)

		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			errClass = c.classifyError(nil, reqErr)
			capiErrorsTotal.WithLabelValues(string(errClass)).Inc()
			capiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return reqErr
		}

		// Keep the shared budget view current
		if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}

		if resp.StatusCode >= 400 {
			errClass = c.classifyError(resp, nil)
			capiErrorsTotal.WithLabelValues(string(errClass)).Inc()
			capiRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Cloud Controller request error")

			if shouldRetry(errClass) {
				apiErr := &APIError{
					StatusCode: resp.StatusCode,
					ErrorClass: errClass,
					Endpoint:   endpoint,
					Message:    resp.Status,
				}
				resp.Body.Close() // Close the body before retrying
				return apiErr
			}

			// Don't retry client errors - return success (caller handles status)
			return nil
		}

		capiRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil
	}, func(err error) ErrorClass {
		return errClass
	})

	if retryErr != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, retryErr
	}

	// Step 5: Update cache on success
	if c.cache != nil && req.Method == http.MethodGet && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp, c.config.CacheTTL)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return resp, nil
}

// Get performs a GET request. path may be a Cloud Controller path
// ("/v3/apps") or a full URL, which is how pagination next links
// arrive from the API.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	url := path
	if strings.HasPrefix(path, "/") {
		url = c.config.APIURL + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// VerifyTarget performs the prerequisite connectivity check against
// /v3/info. Reports run only after this succeeds; a failure means the
// target is wrong or the operator is not logged in.
func (c *Client) VerifyTarget(ctx context.Context) error {
	resp, err := c.Get(ctx, "/v3/info")
	if err != nil {
		return &ConnectivityError{Target: c.config.APIURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ConnectivityError{
			Target: c.config.APIURL,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	c.logger.Debug().Str("target", c.config.APIURL).Msg("Connectivity check passed")
	return nil
}

// APIURL returns the configured Cloud Controller base URL.
func (c *Client) APIURL() string {
	return c.config.APIURL
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
