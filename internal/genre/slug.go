// Package genre normalizes catalog categories into the genre catalogue.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/storyspine/storyspine-server/internal/domain"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL-safe slug.
// "Science Fiction" -> "science-fiction".
// "Biography & Autobiography" -> "biography-autobiography".
// "Romance Épique" -> "romance-epique".
func Slugify(s string) string {
	s = norm.NFKD.String(s)

	// Drop what NFKD decomposed off (accents) and anything else non-ASCII.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FromCategories turns catalog category paths such as
// "Fiction / Science Fiction / Space Opera" into distinct genres. Each path
// segment becomes a genre; filler segments like "General" are dropped and
// known aliases are mapped to their catalogue slug.
func FromCategories(categories []string) []domain.Genre {
	seen := make(map[string]bool)
	out := make([]domain.Genre, 0, len(categories))

	add := func(slug, name string) {
		if slug == "" || seen[slug] {
			return
		}
		seen[slug] = true
		if known, ok := catalogueNames[slug]; ok {
			name = known
		}
		out = append(out, domain.Genre{Slug: slug, Name: name})
	}

	for _, category := range categories {
		for _, segment := range strings.Split(category, "/") {
			name := strings.TrimSpace(segment)
			slug := Slugify(name)
			if fillerSegments[slug] {
				continue
			}
			if canonical, ok := aliases[slug]; ok {
				for _, c := range canonical {
					add(c, name)
				}
				continue
			}
			add(slug, name)
		}
	}

	return out
}
