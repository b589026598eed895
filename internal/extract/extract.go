// Package extract pulls page links and entity references out of fetched
// page content.
//
// Design decision: We use regular expressions over the raw HTML rather than
// a DOM parser because the identifiers we need appear in URL paths with a
// fixed shape (a category slug followed by a fixed-length base62 id), and
// they occur in scripts and JSON blobs as often as in anchor tags. A DOM
// walk would miss most of them.
package extract

import (
	"regexp"

	"spotcrawler/internal/model"
)

// Extractor produces the outbound page identifiers and entity references
// found in fetched page content. Implementations must be safe for
// concurrent use.
type Extractor interface {
	Extract(body []byte) (pages []string, entities []model.Entity)
}

// Entity identifiers are 22 base62 characters; user identifiers are 28
// lowercase alphanumerics.
var (
	slugPattern = regexp.MustCompile(`/(track|album|artist|playlist|concert|episode|show|genre)/([0-9a-zA-Z]{22})`)
	userPattern = regexp.MustCompile(`/user/([0-9a-z]{28})`)
)

// LinkExtractor extracts entity references by their URL path shape.
// Every extracted entity also yields its page identifier as a candidate
// link, since every entity reference is itself a crawlable page.
type LinkExtractor struct{}

// NewLinkExtractor returns the default extractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// Extract returns the candidate pages and entity references found in body.
// Both results are deduplicated within the page; order is unspecified.
func (x *LinkExtractor) Extract(body []byte) ([]string, []model.Entity) {
	seen := make(map[model.Entity]bool)
	var entities []model.Entity

	for _, m := range slugPattern.FindAllSubmatch(body, -1) {
		category, err := model.ParseCategory(string(m[1]))
		if err != nil {
			continue
		}
		e := model.Entity{Category: category, ID: string(m[2])}
		if !seen[e] {
			seen[e] = true
			entities = append(entities, e)
		}
	}

	for _, m := range userPattern.FindAllSubmatch(body, -1) {
		e := model.Entity{Category: model.CategoryUser, ID: string(m[1])}
		if !seen[e] {
			seen[e] = true
			entities = append(entities, e)
		}
	}

	pages := make([]string, 0, len(entities))
	for _, e := range entities {
		pages = append(pages, e.Page())
	}

	return pages, entities
}
