package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	capiRequestsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "capi_rate_limit_requests_remaining",
		Help: "Number of requests remaining in current Cloud Controller rate limit window",
	})

	capiRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capi_rate_limit_blocks_total",
		Help: "Total number of requests blocked due to critical rate limit",
	})

	capiRateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capi_rate_limit_throttles_total",
		Help: "Total number of requests throttled due to low rate limit budget",
	})
)

// Tracker monitors Cloud Controller rate limits and gates requests.
// A nil-Redis tracker is inert: every request is allowed and header
// updates are dropped, so the client works without Redis configured.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new rate limit tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current rate limit state from Redis.
// Returns a default healthy state if no data exists.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	if t.redis == nil {
		return defaultHealthyState(), nil
	}

	remaining, err := t.redis.Get(ctx, RedisKeyRequestsRemaining).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get requests remaining: %w", err)
	}

	limit, err := t.redis.Get(ctx, RedisKeyLimit).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get limit: %w", err)
	}

	resetTimestamp, err := t.redis.Get(ctx, RedisKeyResetTimestamp).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get reset timestamp: %w", err)
	}

	lastUpdateStr, err := t.redis.Get(ctx, RedisKeyLastUpdate).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}

	// No state in Redis yet, assume healthy until real headers arrive
	if err == redis.Nil {
		t.logger.Debug().Msg("No rate limit state in Redis, returning default healthy state")
		return defaultHealthyState(), nil
	}

	var lastUpdate time.Time
	if lastUpdateStr != "" {
		if err := json.Unmarshal([]byte(lastUpdateStr), &lastUpdate); err != nil {
			return nil, fmt.Errorf("parse last update: %w", err)
		}
	}

	state := &State{
		RequestsRemaining: remaining,
		Limit:             limit,
		ResetAt:           time.Unix(resetTimestamp, 0),
		LastUpdate:        lastUpdate,
	}
	state.UpdateHealth()

	return state, nil
}

func defaultHealthyState() *State {
	return &State{
		RequestsRemaining: RequestThresholdHealthy,
		Limit:             RequestThresholdHealthy,
		ResetAt:           time.Now().Add(60 * time.Second),
		LastUpdate:        time.Now(),
		IsHealthy:         true,
	}
}

// UpdateFromHeaders parses Cloud Controller rate limit headers and
// updates the shared Redis state. Responses without the headers (UAA,
// plain reverse proxies) are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get("X-RateLimit-Remaining")
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse X-RateLimit-Remaining header: %w", err)
	}

	limit := 0
	if limitStr := headers.Get("X-RateLimit-Limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return fmt.Errorf("parse X-RateLimit-Limit header: %w", err)
		}
	}

	// X-RateLimit-Reset is epoch seconds on the Cloud Controller
	var resetAt time.Time
	if resetStr := headers.Get("X-RateLimit-Reset"); resetStr != "" {
		resetEpoch, err := strconv.ParseInt(resetStr, 10, 64)
		if err != nil {
			return fmt.Errorf("parse X-RateLimit-Reset header: %w", err)
		}
		resetAt = time.Unix(resetEpoch, 0)
	} else {
		resetAt = time.Now().Add(60 * time.Second)
	}

	now := time.Now()
	state := &State{
		RequestsRemaining: remain,
		Limit:             limit,
		ResetAt:           resetAt,
		LastUpdate:        now,
	}
	state.UpdateHealth()

	if t.redis != nil {
		pipe := t.redis.Pipeline()
		pipe.Set(ctx, RedisKeyRequestsRemaining, remain, 0)
		pipe.Set(ctx, RedisKeyLimit, limit, 0)
		pipe.Set(ctx, RedisKeyResetTimestamp, state.ResetAt.Unix(), 0)

		lastUpdateJSON, err := json.Marshal(state.LastUpdate)
		if err != nil {
			return fmt.Errorf("marshal last update: %w", err)
		}
		pipe.Set(ctx, RedisKeyLastUpdate, lastUpdateJSON, 0)

		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("store rate limit state in redis: %w", err)
		}
	}

	capiRequestsRemaining.Set(float64(remain))

	logEvent := t.logger.Info().
		Int("requests_remaining", remain).
		Time("reset_at", state.ResetAt).
		Bool("is_healthy", state.IsHealthy)

	if state.NeedsCriticalBlock() {
		logEvent = t.logger.Error()
		logEvent.Msg("Cloud Controller rate limit CRITICAL - requests will be blocked")
	} else if state.NeedsThrottling() {
		logEvent = t.logger.Warn()
		logEvent.Msg("Cloud Controller rate limit WARNING - requests will be throttled")
	} else {
		logEvent.Msg("Cloud Controller rate limit state updated")
	}

	return nil
}

// ShouldAllowRequest checks if a request should be allowed based on
// current rate limit state. Returns false when the budget is critical.
// In the warning band the call sleeps briefly to spread load.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get rate limit state: %w", err)
	}

	// Critical: Block all requests
	if state.NeedsCriticalBlock() {
		waitDuration := state.TimeUntilReset()

		t.logger.Error().
			Int("requests_remaining", state.RequestsRemaining).
			Dur("wait_duration", waitDuration).
			Msg("Cloud Controller rate limit critical - blocking request")

		capiRateLimitBlocksTotal.Inc()
		return false, nil
	}

	// Warning: Apply throttling (1 second sleep)
	if state.NeedsThrottling() {
		t.logger.Warn().
			Int("requests_remaining", state.RequestsRemaining).
			Msg("Cloud Controller rate limit warning - throttling request")

		capiRateLimitThrottlesTotal.Inc()
		time.Sleep(1 * time.Second)
	}

	// Healthy: Allow request
	return true, nil
}
