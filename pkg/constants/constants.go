// Package constants provides shared constants used throughout img2catalog.
// This includes timeouts, retry bounds, concurrency limits, traversal caps
// and the names of the environment variables the CLI reads.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for a single HTTP request
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for a CLI command
	CommandTimeout = 30 * time.Minute

	// InFlightGracePeriod bounds how long an in-flight write may keep running
	// after the run has been canceled.
	InFlightGracePeriod = 2 * time.Minute

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for a single wait
	MaxRetryBackoff = 30 * time.Second

	// MaxRetryElapsed bounds the total time spent retrying one write
	MaxRetryElapsed = 2 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of attempts for a transient write failure
	MaxRetries = 4

	// MaxConcurrentRequests bounds concurrent requests against one server
	MaxConcurrentRequests = 8

	// MaxConcurrentWrites bounds concurrent writes against the metadata store
	MaxConcurrentWrites = 4

	// MaxFormDepth caps how deep a supplemental form value may nest
	MaxFormDepth = 16

	// MaxFormNodes caps how many nodes a single supplemental value may contain
	MaxFormNodes = 4096

	// MaxErrorBodySize is how much of an error response body is kept in messages
	MaxErrorBodySize = 2048
)

// Cache constants
const (
	// TokenCacheTTL is used when a token carries no readable expiry
	TokenCacheTTL = 15 * time.Minute

	// TokenExpiryMargin is subtracted from a token expiry before caching it
	TokenExpiryMargin = 30 * time.Second

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// Default values
const (
	// DefaultFormat is the default graph serialization
	DefaultFormat = "turtle"

	// DefaultLogFile is the log file written next to the working directory
	DefaultLogFile = "img2catalog.log"

	// DefaultConfigPath is the default path for the configuration file
	DefaultConfigPath = "~/.img2catalog/config.toml"

	// AppName is used for user agents and config directories
	AppName = "img2catalog"
)

// Environment variable names
const (
	EnvXNATHost       = "XNAT_HOST"
	EnvXNATPYHost     = "XNATPY_HOST"
	EnvXNATUser       = "XNAT_USER"
	EnvXNATPass       = "XNAT_PASS"
	EnvFDP            = "IMG2CATALOG_FDP"
	EnvFDPUser        = "IMG2CATALOG_FDP_USER"
	EnvFDPPass        = "IMG2CATALOG_FDP_PASS"
	EnvSPARQLEndpoint = "IMG2CATALOG_SPARQL_ENDPOINT"
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"
)
