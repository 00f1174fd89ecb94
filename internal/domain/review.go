package domain

import "time"

// Review is a user's written review. At most one non-deleted review exists per
// (user, book); deleting leaves a tombstone.
type Review struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	BookID    string     `json:"book_id"`
	Content   string     `json:"content"`
	Spoiler   bool       `json:"spoiler"`
	LikeCount int        `json:"like_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the review is a tombstone.
func (r *Review) IsDeleted() bool {
	return r.DeletedAt != nil
}

// BookReview is a review as listed on a book page for a specific viewer.
type BookReview struct {
	ID            string            `json:"id"`
	Content       string            `json:"content"`
	Spoiler       bool              `json:"spoiler"`
	LikeCount     int               `json:"like_count"`
	IsLiked       bool              `json:"is_liked"`
	IsOwn         bool              `json:"is_own_review"`
	CreatedAt     time.Time         `json:"created_at"`
	Author        *UserHeadline     `json:"author"`
	AuthorHidden  bool              `json:"author_hidden"`
	AuthorPrivate bool              `json:"-"`
	Rating        *RatingDimensions `json:"author_rating"`
	IsDeleted     bool              `json:"is_deleted"`
	DeletedAt     *time.Time        `json:"deleted_at,omitempty"`
}

// Mask drops the author identity and rating, keeping the content.
func (r *BookReview) Mask() {
	r.Author = nil
	r.Rating = nil
	r.AuthorHidden = true
}

// Tombstone blanks a deleted review so only its place in the thread and its
// likes remain. A tombstone is nobody's own review.
func (r *BookReview) Tombstone(deletedAt time.Time) {
	r.Mask()
	r.Content = ""
	r.Spoiler = false
	r.IsOwn = false
	r.IsDeleted = true
	r.DeletedAt = &deletedAt
}

// ProfileReview is a review shown on its author's profile.
type ProfileReview struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Spoiler    bool      `json:"spoiler"`
	LikeCount  int       `json:"like_count"`
	CreatedAt  time.Time `json:"created_at"`
	BookTitle  string    `json:"book_title"`
	ExternalID string    `json:"external_id"`
}
