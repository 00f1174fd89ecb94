package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storyspine/storyspine-server/internal/domain"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Science Fiction":           "science-fiction",
		"Biography & Autobiography": "biography-autobiography",
		"Romance Épique":            "romance-epique",
		"  --Sci-Fi/Fantasy--  ":    "sci-fi-fantasy",
		"":                          "",
	}

	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestFromCategories(t *testing.T) {
	got := FromCategories([]string{
		"Fiction / Science Fiction / Space Opera",
		"Fiction / General",
		"Juvenile Fiction",
	})

	assert.Equal(t, []domain.Genre{
		{Slug: "fiction", Name: "Fiction"},
		{Slug: "science-fiction", Name: "Science Fiction"},
		{Slug: "space-opera", Name: "Space Opera"},
		{Slug: "children", Name: "Children's"},
	}, got)
}

func TestFromCategories_AliasFanOut(t *testing.T) {
	got := FromCategories([]string{"Mystery & Thriller"})
	assert.Equal(t, []domain.Genre{
		{Slug: "mystery", Name: "Mystery"},
		{Slug: "thriller", Name: "Thriller"},
	}, got)
}

func TestFromCategories_Empty(t *testing.T) {
	assert.Empty(t, FromCategories(nil))
	assert.Empty(t, FromCategories([]string{"General"}))
}

func TestCatalogueSlugsAreNormalized(t *testing.T) {
	for _, g := range Catalogue {
		assert.Equal(t, g.Slug, Slugify(g.Slug), g.Name)
	}
}
