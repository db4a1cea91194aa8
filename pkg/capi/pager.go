package capi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/logankimmel/tpcf-automation/pkg/client"
	"github.com/logankimmel/tpcf-automation/pkg/pagination"
)

// DefaultPageSize is the per_page value requested for collection
// endpoints. The v3 API caps per_page at 5000; 100 keeps individual
// responses small enough for the cache.
const DefaultPageSize = 100

// Pager adapts the Cloud Controller client to pagination.PageFetcher.
type Pager struct {
	client   *client.Client
	pageSize int
}

// NewPager creates a Pager. pageSize <= 0 selects DefaultPageSize.
func NewPager(c *client.Client, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{client: c, pageSize: pageSize}
}

// FetchPage implements pagination.PageFetcher. The initial endpoint
// gets the per_page parameter appended; continuation links already
// carry it and are followed verbatim.
func (p *Pager) FetchPage(ctx context.Context, pageURL string) (*pagination.Page, error) {
	target := pageURL
	if isInitialEndpoint(pageURL) {
		target = pageURL + "?per_page=" + strconv.Itoa(p.pageSize)
	}

	resp, err := p.client.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode page envelope: %w", err)
	}

	page := &pagination.Page{Resources: envelope.Resources}
	if envelope.Pagination.Next != nil {
		page.Next = envelope.Pagination.Next.Href
	}
	return page, nil
}

// isInitialEndpoint reports whether pageURL is a bare collection path
// rather than a continuation link with its own query.
func isInitialEndpoint(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return u.RawQuery == ""
}

// FetchUsageSummary fetches the per-organization usage summary, which
// is a singleton resource rather than a paginated collection.
func FetchUsageSummary(ctx context.Context, c *client.Client, orgGUID string) (*UsageSummary, error) {
	resp, err := c.Get(ctx, "/v3/organizations/"+orgGUID+"/usage_summary")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read usage summary body: %w", err)
	}

	var summary UsageSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("decode usage summary: %w", err)
	}
	return &summary, nil
}
