package googlebooks

// Raw API response types (internal)

type rawVolume struct {
	ID         string         `json:"id"`
	VolumeInfo rawVolumeInfo  `json:"volumeInfo"`
	SearchInfo *rawSearchInfo `json:"searchInfo"`
}

type rawVolumeInfo struct {
	Title         string        `json:"title"`
	Subtitle      string        `json:"subtitle"`
	Authors       []string      `json:"authors"`
	PublishedDate string        `json:"publishedDate"`
	Description   string        `json:"description"`
	Language      string        `json:"language"`
	Categories    []string      `json:"categories"`
	AverageRating *float64      `json:"averageRating"`
	RatingsCount  int           `json:"ratingsCount"`
	ImageLinks    rawImageLinks `json:"imageLinks"`
}

type rawImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Small          string `json:"small"`
	Medium         string `json:"medium"`
}

type rawSearchInfo struct {
	TextSnippet string `json:"textSnippet"`
}

type rawVolumes struct {
	TotalItems int         `json:"totalItems"`
	Items      []rawVolume `json:"items"`
}
