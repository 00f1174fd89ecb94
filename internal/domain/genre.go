package domain

// Genre is a browsable category. Slug is the stable key.
type Genre struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}
