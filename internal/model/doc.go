// Package model defines the core domain types shared across the crawler:
// the entity category enumeration and the (category, identifier) entity
// reference extracted from fetched pages.
package model
