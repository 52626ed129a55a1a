package api

import (
	"time"

	"github.com/jogodabiblia/biblia/internal/search"
)

// Config holds API server configuration.
type Config struct {
	Port              int
	AllowedOrigins    []string // empty = allow all (*)
	RateLimitRequests int      // requests per minute per IP, 0 disables
	RateLimitBurst    int
	DefaultVersion    string // translation used when the query names none
	CacheSize         int    // verse text LRU entries
	CacheTTL          time.Duration
	SearchEnabled     bool
	Search            search.Config
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Port:              8000,
		RateLimitRequests: 120,
		RateLimitBurst:    20,
		DefaultVersion:    "ARA",
		CacheSize:         4096,
		CacheTTL:          0, // verse text is immutable per version
		Search:            search.DefaultConfig(),
	}
}
