package googlebooks

import (
	"strconv"
	"strings"

	"github.com/storyspine/storyspine-server/internal/domain"
)

// toCatalogBook normalizes a volume into the fixed catalog shape. Missing
// authors and categories become empty lists and a missing rating stays nil.
func toCatalogBook(v rawVolume) *domain.CatalogBook {
	info := v.VolumeInfo
	return &domain.CatalogBook{
		ExternalID:    v.ID,
		Title:         title(info),
		Authors:       cleanList(info.Authors),
		CoverURL:      selectCoverURL(info.ImageLinks),
		Summary:       htmlToMarkdown(info.Description),
		PublishedYear: publishedYear(info.PublishedDate),
		Language:      info.Language,
		Genres:        cleanList(info.Categories),
		AvgRating:     info.AverageRating,
		RatingCount:   info.RatingsCount,
	}
}

func toSearchResult(v rawVolume) domain.CatalogSearchResult {
	info := v.VolumeInfo
	r := domain.CatalogSearchResult{
		ExternalID:  v.ID,
		Title:       title(info),
		Authors:     cleanList(info.Authors),
		CoverURL:    selectCoverURL(info.ImageLinks),
		AvgRating:   info.AverageRating,
		RatingCount: info.RatingsCount,
	}
	if v.SearchInfo != nil {
		r.Snippet = stripHTML(v.SearchInfo.TextSnippet)
	}
	return r
}

func title(info rawVolumeInfo) string {
	t := strings.TrimSpace(info.Title)
	if t == "" {
		return "Untitled"
	}
	return t
}

// publishedYear reads the leading year of dates like "1965", "1965-08" or "1965-08-01".
func publishedYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}

// selectCoverURL picks the best available cover, preferring the thumbnail.
// Covers are upgraded to https and lose the page-curl effect.
func selectCoverURL(links rawImageLinks) string {
	for _, u := range []string{links.Thumbnail, links.SmallThumbnail, links.Small, links.Medium} {
		if u == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(u, "http://"); ok {
			u = "https://" + rest
		}
		return strings.ReplaceAll(u, "&edge=curl", "")
	}
	return ""
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
