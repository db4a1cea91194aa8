// Package pagination traverses paginated Cloud Controller collection
// resources behind a PageFetcher seam.
//
// The Cloud Controller v3 API pages every collection and hands back an
// opaque continuation link (pagination.next.href). FetchAll follows
// that link until it is absent and returns the flattened collection,
// atomically: a failed page fails the whole fetch, so callers never
// observe a silently truncated collection.
//
// Example usage:
//
//	pager := capi.NewPager(client, 100)
//	raw, err := pagination.FetchAll(ctx, pager, "/v3/apps")
//	if err != nil {
//		var fe *pagination.FetchError
//		// fe.Endpoint and fe.Page identify the failure
//	}
//	apps, err := pagination.DecodeAll[capi.App](raw)
//
// Independent collections (apps, spaces, organizations) can be fetched
// concurrently with FetchCollections; page order within each
// collection is preserved and per-collection atomicity holds.
package pagination
