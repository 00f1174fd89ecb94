package store

// Page is a limit/offset window over an ordered listing.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page: non-positive limits become def, limits above max
// become max, and negative offsets become zero.
func (p Page) Normalize(def, maxLimit int) Page {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
