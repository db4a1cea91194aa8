package client

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// TokenSource supplies the Authorization header value for Cloud
// Controller requests.
type TokenSource interface {
	// Token returns a value suitable for the Authorization header,
	// e.g. "bearer eyJhbGciOi...".
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a fixed token. Used in tests and when the
// operator exports a token directly.
type StaticTokenSource struct {
	Value string
}

// Token implements TokenSource.
func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s.Value == "" {
		return "", fmt.Errorf("static token is empty")
	}
	return s.Value, nil
}

// CLITokenSource obtains tokens by running `cf oauth-token`, which is
// how the operator is already authenticated against the foundation.
// The token is cached briefly so a multi-collection run does not spawn
// a subprocess per page.
type CLITokenSource struct {
	// Path is the cf binary to invoke (default "cf").
	Path string

	// MaxAge is how long a fetched token is reused (default 5 minutes;
	// cf access tokens live considerably longer).
	MaxAge time.Duration

	mu        sync.Mutex
	token     string
	fetchedAt time.Time
}

// Token implements TokenSource.
func (c *CLITokenSource) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	if c.token != "" && time.Since(c.fetchedAt) < maxAge {
		return c.token, nil
	}

	path := c.Path
	if path == "" {
		path = "cf"
	}

	out, err := exec.CommandContext(ctx, path, "oauth-token").Output()
	if err != nil {
		return "", fmt.Errorf("run %s oauth-token: %w", path, err)
	}

	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", fmt.Errorf("%s oauth-token returned no token (not logged in?)", path)
	}

	c.token = token
	c.fetchedAt = time.Now()
	return token, nil
}
