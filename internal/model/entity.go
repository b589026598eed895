package model

// Entity is a single (category, identifier) reference discovered on a page.
// Identifiers are opaque strings; equality is exact string equality.
type Entity struct {
	// Category is the kind of entity referenced.
	Category Category

	// ID is the entity's identifier as it appears in page URLs.
	ID string
}

// Page returns the page identifier for this entity, relative to the site
// origin (e.g. "track/6fxbtIuYVYl37ynRqEfMcc"). Every entity reference is
// also a crawlable page.
func (e Entity) Page() string {
	return e.Category.String() + "/" + e.ID
}
