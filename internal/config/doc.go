// Package config holds the crawler configuration: defaults, validation,
// and the optional YAML configuration file.
//
// Configuration is resolved in three layers: built-in defaults, then the
// configuration file (if present), then command-line flags. The Config
// struct is populated once at startup and passed through the application
// via dependency injection rather than global state.
package config
