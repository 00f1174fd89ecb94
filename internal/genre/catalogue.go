package genre

import "github.com/storyspine/storyspine-server/internal/domain"

// Catalogue is the seeded genre list offered for preferences. Book genres
// outside it are kept as display names but never linked for filtering.
var Catalogue = []domain.Genre{
	{Slug: "fiction", Name: "Fiction"},
	{Slug: "fantasy", Name: "Fantasy"},
	{Slug: "science-fiction", Name: "Science Fiction"},
	{Slug: "romance", Name: "Romance"},
	{Slug: "romantasy", Name: "Romantasy"},
	{Slug: "mystery", Name: "Mystery"},
	{Slug: "thriller", Name: "Thriller"},
	{Slug: "horror", Name: "Horror"},
	{Slug: "historical-fiction", Name: "Historical Fiction"},
	{Slug: "literary-fiction", Name: "Literary Fiction"},
	{Slug: "young-adult", Name: "Young Adult"},
	{Slug: "children", Name: "Children's"},
	{Slug: "graphic-novels", Name: "Comics & Graphic Novels"},
	{Slug: "poetry", Name: "Poetry"},
	{Slug: "non-fiction", Name: "Non-Fiction"},
	{Slug: "biography-memoir", Name: "Biography & Memoir"},
	{Slug: "history", Name: "History"},
	{Slug: "science", Name: "Science"},
	{Slug: "self-help", Name: "Self-Help"},
	{Slug: "business", Name: "Business & Economics"},
	{Slug: "philosophy", Name: "Philosophy"},
	{Slug: "religion", Name: "Religion & Spirituality"},
	{Slug: "true-crime", Name: "True Crime"},
	{Slug: "travel", Name: "Travel"},
	{Slug: "cooking", Name: "Cooking"},
	{Slug: "humor", Name: "Humor"},
}

var catalogueNames = func() map[string]string {
	m := make(map[string]string, len(Catalogue))
	for _, g := range Catalogue {
		m[g.Slug] = g.Name
	}
	return m
}()

// fillerSegments carry no genre information on their own.
var fillerSegments = map[string]bool{
	"general":                      true,
	"other":                        true,
	"juvenile":                     true,
	"anthologies-multiple-authors": true,
}

// aliases map catalog (BISAC style) category slugs onto catalogue slugs.
var aliases = map[string][]string{
	"sci-fi":                  {"science-fiction"},
	"scifi":                   {"science-fiction"},
	"science-fiction-fantasy": {"science-fiction", "fantasy"},
	"fantasy-romance":         {"fantasy", "romance"},
	"romantic-fantasy":        {"romantasy"},
	"mystery-detective":       {"mystery"},
	"mystery-thriller":        {"mystery", "thriller"},
	"suspense":                {"thriller"},
	"thrillers":               {"thriller"},
	"historical":              {"historical-fiction"},
	"literary":                {"literary-fiction"},
	"juvenile-fiction":        {"children"},
	"juvenile-nonfiction":     {"children", "non-fiction"},
	"young-adult-fiction":     {"young-adult"},
	"young-adult-nonfiction":  {"young-adult", "non-fiction"},
	"ya":                      {"young-adult"},
	"comics-graphic-novels":   {"graphic-novels"},
	"biography-autobiography": {"biography-memoir"},
	"business-economics":      {"business"},
	"religion":                {"religion"},
	"body-mind-spirit":        {"religion"},
	"self-help":               {"self-help"},
	"psychology":              {"self-help"},
	"true-crime":              {"true-crime"},
	"cooking":                 {"cooking"},
	"humor":                   {"humor"},
	"nonfiction":              {"non-fiction"},
}
