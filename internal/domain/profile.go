package domain

// Profile is a user's profile page as seen by a viewer. Headline and Counts are
// always present; the rest is populated only when the viewer may see the user.
type Profile struct {
	Headline         UserHeadline    `json:"user"`
	IsPrivate        bool            `json:"is_private"`
	Counts           FollowCounts    `json:"counts"`
	BooksReadCount   int             `json:"books_read_count"`
	Restricted       bool            `json:"restricted"`
	ViewerFollows    bool            `json:"viewer_follows"`
	Bio              string          `json:"bio,omitempty"`
	Genres           []string        `json:"genres"`
	CurrentlyReading []BookSummary   `json:"currently_reading"`
	RecentlyFinished []BookSummary   `json:"recently_finished"`
	RecentReviews    []ProfileReview `json:"recent_reviews"`
}
