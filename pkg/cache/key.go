package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached Cloud Controller response.
// Pages of a collection cache independently since the page URL
// (including the continuation parameters) is part of the key.
type Key struct {
	// URL is the full request URL including query parameters.
	URL string
}

// String generates a deterministic cache key string.
// Query parameters are re-sorted so logically identical URLs share
// an entry regardless of parameter order.
//
// Example:
//
//	capi:https://api.sys.example.com/v3/apps?page=2&per_page=100
func (k Key) String() string {
	u, err := url.Parse(k.URL)
	if err != nil {
		// Unparseable URL, key on the raw string
		return "capi:" + k.URL
	}

	query := u.Query()
	if len(query) == 0 {
		return "capi:" + u.Scheme + "://" + u.Host + u.Path
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		values := query[key]
		sort.Strings(values)
		for _, v := range values {
			parts = append(parts, key+"="+v)
		}
	}

	return "capi:" + u.Scheme + "://" + u.Host + u.Path + "?" + strings.Join(parts, "&")
}
