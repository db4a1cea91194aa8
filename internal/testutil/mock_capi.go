// Package testutil provides testing utilities for the reporting CLI.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MockResponse defines the behavior for a mock Cloud Controller
// endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockCC is a configurable mock Cloud Controller for testing.
type MockCC struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockCC creates a new mock Cloud Controller server. The /v3/info
// connectivity check answers 200 by default.
func NewMockCC() *MockCC {
	mock := &MockCC{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCC) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCC) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockCC) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCC) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler sets a custom handler for a specific path.
func (m *MockCC) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockCC) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetCollection serves a paginated v3 collection at path, split into
// pages of pageSize resources each, with proper next links back to
// this server. Page selection uses the standard page query parameter.
func (m *MockCC) SetCollection(path string, resources []string, pageSize int) {
	if pageSize <= 0 {
		pageSize = 50
	}

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if pageStr := r.URL.Query().Get("page"); pageStr != "" {
			if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
				page = p
			}
		}

		totalPages := (len(resources) + pageSize - 1) / pageSize
		if totalPages == 0 {
			totalPages = 1
		}

		startIdx := (page - 1) * pageSize
		endIdx := startIdx + pageSize
		if startIdx > len(resources) {
			startIdx = len(resources)
		}
		if endIdx > len(resources) {
			endIdx = len(resources)
		}

		pageResources := make([]json.RawMessage, 0, endIdx-startIdx)
		for _, res := range resources[startIdx:endIdx] {
			pageResources = append(pageResources, json.RawMessage(res))
		}

		next := "null"
		if page < totalPages {
			next = fmt.Sprintf(`{"href":%q}`, fmt.Sprintf("%s%s?page=%d&per_page=%d", m.URL(), path, page+1, pageSize))
		}

		body, _ := json.Marshal(pageResources)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Limit", "2000")
		w.Header().Set("X-RateLimit-Remaining", "1990")
		fmt.Fprintf(w, `{"pagination":{"total_results":%d,"total_pages":%d,"next":%s},"resources":%s}`,
			len(resources), totalPages, next, body)
	})
}

// defaultHandler provides Cloud-Controller-like defaults: the /v3/info
// connectivity check succeeds, everything else is a v3-shaped 404.
func (m *MockCC) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Limit", "2000")
	w.Header().Set("X-RateLimit-Remaining", "1990")

	if r.URL.Path == "/v3/info" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"name":"Tanzu Platform for Cloud Foundry","version":6}`))
		return
	}

	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"errors":[{"code":10010,"title":"CF-ResourceNotFound","detail":"Unknown request"}]}`))
}

// NewUsageSummaryResponse builds a usage summary body for an org.
// Pass nil to omit a counter, exercising the null-coalescing sum path.
func NewUsageSummaryResponse(appInstances, serviceInstances *int) MockResponse {
	ai := "null"
	if appInstances != nil {
		ai = strconv.Itoa(*appInstances)
	}
	si := "null"
	if serviceInstances != nil {
		si = strconv.Itoa(*serviceInstances)
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"usage_summary":{"started_instances":%s,"service_instances":%s,"memory_in_mb":1024}}`, ai, si),
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"errors":[{"code":10001,"title":"CF-ServerError","detail":"boom"}]}`,
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"errors":[{"code":10013,"title":"CF-RateLimitExceeded","detail":"Rate limit exceeded"}]}`,
		Headers: map[string]string{
			"X-RateLimit-Limit":     "2000",
			"X-RateLimit-Remaining": "0",
		},
	}
}
