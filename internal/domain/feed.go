package domain

// FeedReason explains why a book appears in a feed.
type FeedReason string

const (
	ReasonTrending  FeedReason = "trending"
	ReasonGenre     FeedReason = "genre"
	ReasonFollowing FeedReason = "following"
)

// FeedStrategy is the composition strategy chosen for a viewer.
type FeedStrategy string

const (
	FeedTrending     FeedStrategy = "trending"
	FeedPersonalized FeedStrategy = "personalized"
)

// FeedItem is one scored book in a feed.
type FeedItem struct {
	Book   BookSummary `json:"book"`
	Score  float64     `json:"score"`
	Reason FeedReason  `json:"reason"`
}

// Feed is a composed feed page.
type Feed struct {
	Strategy FeedStrategy `json:"strategy"`
	Items    []FeedItem   `json:"items"`
}

// FeedSignal counts what a viewer has told us about their taste.
type FeedSignal struct {
	Ratings     int
	Preferences int
	Following   int
}

// Personalizable reports whether a personalized feed can be built.
// Never-rated viewers always get trending.
func (s FeedSignal) Personalizable() bool {
	return s.Ratings > 0 && (s.Preferences > 0 || s.Following > 0)
}
