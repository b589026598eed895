package model

import "fmt"

// Category classifies an entity reference found on a page.
//
// The integer codes are part of the on-disk format: the entity queue stores
// categories by code, so the values here must never be reordered or reused.
type Category int

// All known entity categories. The codes match the storage schema.
const (
	CategoryTrack Category = iota
	CategoryAlbum
	CategoryArtist
	CategoryPlaylist
	CategoryConcert
	CategoryUser
	CategoryEpisode
	CategoryShow
	CategoryGenre
)

// categoryNames maps each category to its URL path slug.
var categoryNames = [...]string{
	CategoryTrack:    "track",
	CategoryAlbum:    "album",
	CategoryArtist:   "artist",
	CategoryPlaylist: "playlist",
	CategoryConcert:  "concert",
	CategoryUser:     "user",
	CategoryEpisode:  "episode",
	CategoryShow:     "show",
	CategoryGenre:    "genre",
}

// String returns the category's URL path slug (e.g. "track", "album").
// Unknown categories return "unknown".
func (c Category) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return categoryNames[c]
}

// Code returns the stable integer code used at the storage boundary.
func (c Category) Code() int {
	return int(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= CategoryTrack && c <= CategoryGenre
}

// Categories returns all known categories in code order.
func Categories() []Category {
	cats := make([]Category, len(categoryNames))
	for i := range categoryNames {
		cats[i] = Category(i)
	}
	return cats
}

// ParseCategory converts a URL path slug to its Category.
// It returns an error for unrecognized slugs.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

// CategoryFromCode converts a storage code back to its Category.
// It returns an error for codes outside the known range.
func CategoryFromCode(code int) (Category, error) {
	c := Category(code)
	if !c.Valid() {
		return 0, fmt.Errorf("unknown category code %d", code)
	}
	return c, nil
}
