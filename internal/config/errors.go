package config

import "errors"

// Configuration validation errors returned by Config.Validate.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoRootDir is returned when no root storage directory is set.
	ErrNoRootDir = errors.New("no root directory: set --root or the root config field")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidConcurrency is returned when the fetch concurrency cap is
	// not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidOrigin is returned when the site origin is not an absolute
	// URL.
	ErrInvalidOrigin = errors.New("invalid origin: must be an absolute URL")

	// ErrNoSeedPage is returned when the bootstrap seed page is empty.
	ErrNoSeedPage = errors.New("no seed page: a non-empty seed is required to bootstrap an empty frontier")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidTransientPause is returned when the transient failure pause
	// is negative.
	ErrInvalidTransientPause = errors.New("invalid transient pause: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")
)
