// Package pagination implements traversal of paginated Cloud
// Controller collection resources.
package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Page is one fragment of a collection resource.
type Page struct {
	// Resources holds the page's records, undecoded. Callers bind
	// them to concrete payload types once the fetch is complete.
	Resources []json.RawMessage

	// Next is the continuation link to the following page.
	// Empty marks the final page.
	Next string
}

// PageFetcher is the interface the transport collaborator implements
// for single-page fetching. pageURL is either the initial collection
// endpoint or a continuation link previously returned in Page.Next.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*Page, error)
}

// FetchError reports a failed collection fetch. The collection is
// never partially returned alongside it.
type FetchError struct {
	// Endpoint is the collection endpoint the traversal started from.
	Endpoint string

	// Page is the 1-based page number that failed.
	Page int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s (page %d): %v", e.Endpoint, e.Page, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchAll requests every page of a collection, following the
// server-supplied next link until it is absent, and returns the
// concatenated resource list in page order.
//
// The operation is atomic: if any page fetch fails the whole call
// fails with *FetchError and no partial collection is returned.
// An empty first page yields an empty (non-nil) slice, not an error.
func FetchAll(ctx context.Context, fetcher PageFetcher, endpoint string) ([]json.RawMessage, error) {
	start := time.Now()

	resources := []json.RawMessage{}
	currentPage := endpoint
	pageNum := 0

	for currentPage != "" {
		pageNum++

		page, err := fetcher.FetchPage(ctx, currentPage)
		if err != nil {
			return nil, &FetchError{Endpoint: endpoint, Page: pageNum, Err: err}
		}

		resources = append(resources, page.Resources...)
		currentPage = page.Next

		log.Debug().
			Str("endpoint", endpoint).
			Int("page", pageNum).
			Int("resources", len(resources)).
			Msg("Fetched page")
	}

	log.Info().
		Str("endpoint", endpoint).
		Int("pages", pageNum).
		Int("resources", len(resources)).
		Dur("duration", time.Since(start)).
		Msg("Collection fetch complete")

	return resources, nil
}

// collectionResult carries one endpoint's outcome across the fan-out.
type collectionResult struct {
	endpoint  string
	resources []json.RawMessage
	err       error
}

// FetchCollections fetches several independent collections
// concurrently. Page traversal within each collection stays
// sequential (next links are only known one page at a time), and each
// collection keeps FetchAll's atomicity. The first failure cancels
// the remaining fetches and fails the whole call.
func FetchCollections(ctx context.Context, fetcher PageFetcher, endpoints []string) (map[string][]json.RawMessage, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan collectionResult, len(endpoints))

	var wg sync.WaitGroup
	for _, endpoint := range endpoints {
		wg.Add(1)
		go func(endpoint string) {
			defer wg.Done()
			resources, err := FetchAll(ctx, fetcher, endpoint)
			results <- collectionResult{endpoint: endpoint, resources: resources, err: err}
			if err != nil {
				cancel()
			}
		}(endpoint)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	collections := make(map[string][]json.RawMessage, len(endpoints))
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			log.Warn().
				Err(result.err).
				Str("endpoint", result.endpoint).
				Msg("Collection fetch failed")
			continue
		}
		collections[result.endpoint] = result.resources
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return collections, nil
}

// DecodeAll binds a fetched collection to a concrete payload type.
// Raw records that fail to decode fail the whole call: a half-typed
// collection would silently distort every downstream join.
func DecodeAll[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("decode resource %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
