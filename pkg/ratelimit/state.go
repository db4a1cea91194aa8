// Package ratelimit implements Cloud Controller rate limit tracking and
// request gating. It monitors the X-RateLimit-Remaining and
// X-RateLimit-Reset headers so bulk collection fetches back off before
// the platform starts returning 429s.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyRequestsRemaining = "capi:rate_limit:requests_remaining"
	RedisKeyLimit             = "capi:rate_limit:limit"
	RedisKeyResetTimestamp    = "capi:rate_limit:reset_timestamp"
	RedisKeyLastUpdate        = "capi:rate_limit:last_update"
)

// Thresholds for rate limit decisions.
const (
	// RequestThresholdCritical blocks all requests when requests
	// remaining falls below this value. A report run that cannot finish
	// within the remaining budget should stop early rather than burn
	// the budget other platform automation shares.
	RequestThresholdCritical = 10

	// RequestThresholdWarning applies throttling when requests
	// remaining falls below this value.
	RequestThresholdWarning = 100

	// RequestThresholdHealthy indicates normal operation.
	RequestThresholdHealthy = 500
)

// State represents the current Cloud Controller rate limit state.
// Shared across client instances via Redis so parallel report runs
// against the same foundation see one budget.
type State struct {
	// RequestsRemaining is the number of requests left in the current
	// window, from the X-RateLimit-Remaining header.
	RequestsRemaining int `json:"requests_remaining"`

	// Limit is the total window budget, from X-RateLimit-Limit.
	Limit int `json:"limit"`

	// ResetAt is when the window resets, from X-RateLimit-Reset
	// (epoch seconds).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last refreshed from headers.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy indicates whether the budget is in a healthy state.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked.
func (s *State) NeedsCriticalBlock() bool {
	return s.RequestsRemaining < RequestThresholdCritical
}

// NeedsThrottling returns true if requests should be throttled.
func (s *State) NeedsThrottling() bool {
	return s.RequestsRemaining < RequestThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field from RequestsRemaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.RequestsRemaining >= RequestThresholdHealthy
}
