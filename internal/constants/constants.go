// Package constants provides a centralized location for configuration
// values and magic numbers used throughout the orgscout application.
package constants

import "time"

// Request pacing constants
const (
	// DefaultRequestDelay is the minimum spacing between outbound page
	// fetches. github.com starts serving 429s well below one request
	// per second from a single address.
	DefaultRequestDelay = 1500 * time.Millisecond

	// DefaultRequestJitter is the bound of the random jitter applied on
	// top of DefaultRequestDelay so repeated runs don't fall into a
	// synchronized request rhythm.
	DefaultRequestJitter = 200 * time.Millisecond
)

// Retry constants
const (
	// MaxFetchAttempts is the total number of attempts for a single
	// fetch, including the first one.
	MaxFetchAttempts = 5

	// RetryBaseDelay is the backoff delay after the first failed attempt.
	RetryBaseDelay = 2 * time.Second

	// RetryMaxDelay caps the exponential backoff delay.
	RetryMaxDelay = 60 * time.Second
)

// Cache constants
const (
	// PageCacheTTL is the maximum age of a cached page body before it is
	// considered stale and re-fetched.
	PageCacheTTL = 7 * 24 * time.Hour

	// MemoryCacheSize is the number of page bodies kept in the in-memory
	// tier in front of the on-disk store.
	MemoryCacheSize = 256
)

// Reporting constants
const (
	// TopContributorCount is how many top contributors are retained per
	// organization for display.
	TopContributorCount = 3

	// DefaultWindowMonths is the default activity window when no --since
	// value is given.
	DefaultWindowMonths = 12
)
