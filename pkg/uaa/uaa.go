// Package uaa adapts the uaac identity CLI to the same paginated
// fetch pipeline the HTTP API uses. The CLI prints records as
// indented "key: value" blocks; this package parses them into
// JSON-shaped records once, behind a single seam, so no report code
// ever scrapes text itself.
package uaa

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/logankimmel/tpcf-automation/pkg/pagination"
)

// Runner executes the identity CLI and returns its stdout. It exists
// so tests can substitute canned output for real process execution.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs the real uaac binary.
type ExecRunner struct {
	// Path is the uaac executable. Defaults to "uaac" on PATH.
	Path string
}

// Run implements Runner via os/exec.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	path := r.Path
	if path == "" {
		path = "uaac"
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("uaac %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("uaac %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// ParseRecords parses uaac block output into JSON objects. Records are
// separated by blank lines; each line inside a record is "key: value".
// A key repeated within one record accumulates its values into an
// array (group memberships print one line per group). Lines without a
// colon, such as trailing counts or decoration, are ignored.
func ParseRecords(output []byte) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0)
	current := make(map[string]any)

	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		raw, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("encoding parsed record: %w", err)
		}
		records = append(records, raw)
		current = make(map[string]any)
		return nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = normalizeKey(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}

		switch existing := current[key].(type) {
		case nil:
			current[key] = value
		case string:
			current[key] = []string{existing, value}
		case []string:
			current[key] = append(existing, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading uaac output: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return records, nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, " ", "_")
}

// Pager exposes uaac listings as single-page collections. The endpoint
// string is the uaac subcommand line, e.g. "users" or "groups".
type Pager struct {
	runner Runner
}

// NewPager returns a Pager backed by the given Runner.
func NewPager(runner Runner) *Pager {
	return &Pager{runner: runner}
}

// FetchPage implements pagination.PageFetcher. The CLI returns the
// full listing in one invocation, so Next is always empty.
func (p *Pager) FetchPage(ctx context.Context, endpoint string) (*pagination.Page, error) {
	out, err := p.runner.Run(ctx, strings.Fields(endpoint)...)
	if err != nil {
		return nil, err
	}

	records, err := ParseRecords(out)
	if err != nil {
		return nil, err
	}

	return &pagination.Page{Resources: records, Next: ""}, nil
}
