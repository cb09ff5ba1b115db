// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the codewatch application.
package constants

import "time"

// Cache sizing constants
const (
	// UserHistoryCapacity is the number of recently viewed users kept in
	// the user cache. The logged-in user is pinned and does not count.
	UserHistoryCapacity = 20

	// RepoHistoryCapacity is the number of recently viewed repositories
	// kept in the repo cache.
	RepoHistoryCapacity = 20

	// SearchHistoryCapacity is the number of recent search queries kept
	// in the search cache.
	SearchHistoryCapacity = 20
)

// Cache TTL constants
const (
	// UserCacheTTL is the maximum age of a cached user profile before a
	// lookup goes back to the API.
	UserCacheTTL = 10 * time.Minute

	// RepoCacheTTL is shorter than the user TTL since commit lists change
	// more frequently than profiles.
	RepoCacheTTL = 5 * time.Minute

	// SearchCacheTTL is short since new accounts and repositories show up
	// in search within minutes.
	SearchCacheTTL = 2 * time.Minute
)

// Remote API constants
const (
	// RequestTimeout bounds a single remote call. A timeout is reported
	// as a network error.
	RequestTimeout = 30 * time.Second

	// CommitLimit is the number of commits fetched with a repository.
	CommitLimit = 30

	// MaxCommitLimit is the largest page GitHub serves for commit lists.
	MaxCommitLimit = 100

	// SearchLimit is the number of users and of repositories a search
	// returns.
	SearchLimit = 10

	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Display constants
const (
	// DefaultTerminalWidth is used when the output is not a terminal.
	DefaultTerminalWidth = 100

	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3
)
