package collect

import "context"

// Fetcher retrieves page HTML. It is satisfied by scrape.Client and by
// test fakes serving canned fixtures.
type Fetcher interface {
	// Fetch returns the page body for url and whether it came from
	// cache.
	Fetch(ctx context.Context, url string) (string, bool, error)

	// FetchKeyed is Fetch with an explicit cache key.
	FetchKeyed(ctx context.Context, url, key string) (string, bool, error)
}

// PageResult is the outcome of collecting one listing page.
type PageResult struct {
	Contributors ActivityMap
	NextPage     string
	Items        int
}
